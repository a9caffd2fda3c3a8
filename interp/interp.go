package interp

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// ExitMessage is the output of the exit statement.
const ExitMessage = "Exiting..."

// ErrStatement is matched by every StatementError.
var ErrStatement = errors.New("statement error")

// StatementError is an error confined to one line. Its message is exactly
// the text the line produces.
type StatementError struct {
	Statement string
	Msg       string
	Err       error
}

func (e *StatementError) Error() string { return e.Msg }

func (e *StatementError) Unwrap() error { return e.Err }

// Is matches ErrStatement.
func (e *StatementError) Is(target error) bool { return target == ErrStatement }

var (
	errNotNumeric     = errors.New("not a number")
	errDivisionByZero = errors.New("division by zero")
)

// Session holds the variable store of one command sequence.
// A Session is owned by a single caller and is not safe for concurrent use.
type Session struct {
	vars   map[string]string
	halted bool
}

// NewSession creates a session seeded with vars. The map is copied.
func NewSession(vars map[string]string) *Session {
	s := &Session{vars: make(map[string]string, len(vars))}
	maps.Copy(s.vars, vars)
	return s
}

// Vars returns a copy of the variable store.
func (s *Session) Vars() map[string]string {
	return maps.Clone(s.vars)
}

// Lookup returns the raw text bound to name.
func (s *Session) Lookup(name string) (string, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Halted reports whether an exit statement has run.
func (s *Session) Halted() bool {
	return s.halted
}

// Outcome is the result of executing one line.
type Outcome struct {
	// Output is the text the line produced; empty for no-ops and false conditions.
	Output string

	// Halt is set by the exit statement.
	Halt bool

	// Err is a *StatementError when the line failed. Output carries its message.
	Err error
}

type statement struct {
	pattern *regexp.Regexp
	exec    func(s *Session, line string, m []string) Outcome
}

var (
	conditionPattern = regexp.MustCompile(`^(\w+)\s*([><=!]+)\s*(.+)`)

	// Order matters: the first matching form wins.
	statements = []statement{
		{regexp.MustCompile(`(?i)^set (\w+) to (.+)`), execSet},
		{regexp.MustCompile(`(?i)^show (\w+)`), execShow},
		{regexp.MustCompile(`(?i)^add (.+) and (.+)`), arithmetic("add", func(a, b float64) (float64, error) { return a + b, nil })},
		{regexp.MustCompile(`(?i)^multiply (.+) and (.+)`), arithmetic("multiply", func(a, b float64) (float64, error) { return a * b, nil })},
		{regexp.MustCompile(`(?i)^divide (.+) by (.+)`), arithmetic("divide", divide)},
		{regexp.MustCompile(`(?i)^if (.+?) then print (.+)`), execIf},
	}
)

// Execute runs one line against the session. Statement errors never
// invalidate the session; a halted session ignores further lines.
func (s *Session) Execute(line string) Outcome {
	if s.halted {
		return Outcome{Halt: true}
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
		return Outcome{}
	}
	for _, st := range statements {
		if m := st.pattern.FindStringSubmatch(line); m != nil {
			return st.exec(s, line, m)
		}
	}
	if strings.EqualFold(line, "exit") {
		s.halted = true
		return Outcome{Output: ExitMessage, Halt: true}
	}
	return fail(line, fmt.Sprintf("Error: Unknown command '%s'", line), nil)
}

func fail(line, msg string, err error) Outcome {
	se := &StatementError{Statement: line, Msg: msg, Err: err}
	return Outcome{Output: msg, Err: se}
}

func execSet(s *Session, _ string, m []string) Outcome {
	name, value := m[1], strings.TrimSpace(m[2])
	s.vars[name] = value
	return Outcome{Output: fmt.Sprintf("Set %s = %s", name, value)}
}

func execShow(s *Session, line string, m []string) Outcome {
	name := m[1]
	value, ok := s.vars[name]
	if !ok {
		return fail(line, fmt.Sprintf("Error: Variable '%s' not found.", name), nil)
	}
	return Outcome{Output: fmt.Sprintf("%s = %s", name, value)}
}

func arithmetic(name string, op func(a, b float64) (float64, error)) func(*Session, string, []string) Outcome {
	return func(s *Session, line string, m []string) Outcome {
		a, errA := s.number(m[1])
		b, errB := s.number(m[2])
		if err := errors.Join(errA, errB); err != nil {
			return fail(line, fmt.Sprintf("Error in %s: Invalid number or variable in '%s'.", name, line), err)
		}
		v, err := op(a, b)
		if errors.Is(err, errDivisionByZero) {
			return fail(line, "Error: Division by zero.", err)
		}
		return Outcome{Output: format(v)}
	}
}

func divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, errDivisionByZero
	}
	return a / b, nil
}

func execIf(s *Session, line string, m []string) Outcome {
	condition, text := m[1], strings.TrimSpace(m[2])
	c := conditionPattern.FindStringSubmatch(condition)
	if c == nil {
		return fail(line, fmt.Sprintf("Error: Unsupported condition format in '%s'.", condition), nil)
	}

	var cmp func(a, b float64) bool
	switch c[2] {
	case ">":
		cmp = func(a, b float64) bool { return a > b }
	case "<":
		cmp = func(a, b float64) bool { return a < b }
	case "==":
		cmp = func(a, b float64) bool { return a == b }
	case "!=":
		cmp = func(a, b float64) bool { return a != b }
	default:
		return fail(line, fmt.Sprintf("Error: Unsupported condition format in '%s'.", condition), nil)
	}

	left, errL := s.number(c[1])
	right, errR := s.number(c[3])
	if err := errors.Join(errL, errR); err != nil {
		return fail(line, fmt.Sprintf("Error in condition: Invalid number or variable in '%s'.", condition), err)
	}
	if cmp(left, right) {
		return Outcome{Output: text}
	}
	return Outcome{}
}

// number resolves a token: a bound variable's stored text is coerced,
// otherwise the token itself is.
func (s *Session) number(token string) (float64, error) {
	token = strings.TrimSpace(token)
	raw := token
	if v, ok := s.vars[token]; ok {
		raw = strings.TrimSpace(v)
	}
	if raw == "" {
		return 0, fmt.Errorf("%w: %q", errNotNumeric, token)
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errNotNumeric, token)
	}
	return f, nil
}

func format(v float64) string {
	return cast.ToString(v)
}
