package toolchain

import (
	"errors"
	"fmt"
)

// Sentinel errors for toolchain operations.
var (
	// ErrBuild matches every BuildError.
	ErrBuild = errors.New("toolchain build failed")

	// ErrUnknownToolchain indicates an id with no registered Spec.
	ErrUnknownToolchain = errors.New("unknown toolchain")

	// ErrInvalidSpec indicates a Spec that cannot be built.
	ErrInvalidSpec = errors.New("invalid toolchain spec")

	// ErrToolchainExists is returned when registering a duplicate id.
	ErrToolchainExists = errors.New("toolchain already registered")
)

// Build steps reported in BuildError.Step.
const (
	StepPrepare = "prepare"
	StepGrammar = "grammar"
	StepLexer   = "lexer"
	StepCompile = "compile"
)

// BuildError reports a failed build step. Message carries the offending
// tool's stderr verbatim.
type BuildError struct {
	Toolchain string
	Step      string
	Message   string
	Err       error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s %s step failed:\n%s", e.Toolchain, e.Step, e.Message)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Is matches ErrBuild.
func (e *BuildError) Is(target error) bool { return target == ErrBuild }
