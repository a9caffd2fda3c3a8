package classify

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnparseable is the cause behind records built from input without the
// "Error:" sentinel.
var ErrUnparseable = errors.New("unparseable input")

// Kind is the error category of a Record.
type Kind uint8

const (
	GenericCompilationError Kind = iota
	SyntaxError
	SemanticError
	LinkerError
)

// String returns the display name used in rendered records.
func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "Syntax Error"
	case SemanticError:
		return "Semantic Error"
	case LinkerError:
		return "Linker Error"
	default:
		return "Compilation Error (Generic)"
	}
}

// MarshalText encodes the display name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts a display name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{GenericCompilationError, SyntaxError, SemanticError, LinkerError} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown error kind %q", text)
}

// Record is a structured explanation of one compiler diagnostic.
type Record struct {
	Kind        Kind   `json:"kind"`
	Cause       string `json:"cause"`
	Location    string `json:"location"`
	Fix         string `json:"fix"`
	Explanation string `json:"explanation"`

	// Rule names the rule that produced the record.
	Rule string `json:"rule"`

	// Fallback is set when no specific rule matched.
	Fallback bool `json:"fallback"`
}

// String renders the record as labeled lines.
func (r Record) String() string {
	var b strings.Builder
	b.WriteString("Error Type: ")
	b.WriteString(r.Kind.String())
	b.WriteString("\nCause: ")
	b.WriteString(r.Cause)
	b.WriteString("\nLocation: ")
	b.WriteString(r.Location)
	b.WriteString("\nFix: ")
	b.WriteString(r.Fix)
	b.WriteString("\nExplanation: ")
	b.WriteString(r.Explanation)
	return b.String()
}
