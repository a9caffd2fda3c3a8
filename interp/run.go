package interp

import (
	"regexp"
	"strings"
)

var (
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`//.*`)
)

// StripComments removes C-style block and line comments from text.
func StripComments(text string) string {
	text = blockComment.ReplaceAllString(text, "")
	return lineComment.ReplaceAllString(text, "")
}

// ExecuteLine runs line against s, which is updated in place, and returns
// the produced text and whether the sequence must halt.
func ExecuteLine(line string, s *Session) (string, bool) {
	out := s.Execute(line)
	return out.Output, out.Halt
}

// ExecuteSequence runs lines in a fresh session, stopping after the first
// halt. Non-empty outputs are joined with newlines.
func ExecuteSequence(lines []string) string {
	s := NewSession(nil)
	var out []string
	for _, line := range lines {
		text, halt := ExecuteLine(line, s)
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
		if halt {
			break
		}
	}
	return strings.Join(out, "\n")
}

// Run executes a multi-line program. Inline comments are stripped from each
// line before it runs.
func Run(program string) string {
	raw := strings.Split(strings.ReplaceAll(program, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(StripComments(line)); line != "" {
			lines = append(lines, line)
		}
	}
	return ExecuteSequence(lines)
}
