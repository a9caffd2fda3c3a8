package backend

import (
	"context"
	"errors"

	"github.com/jonwraymond/toolfoundation/model"
)

// Errors for backend operations.
var (
	ErrBackendNotFound = errors.New("backend not found")
	ErrBackendDisabled = errors.New("backend disabled")
	ErrToolNotFound    = errors.New("tool not found in backend")
	ErrBackendExists   = errors.New("backend already registered")
	ErrInvalidToolID   = errors.New("invalid tool ID format")
)

// Backend is a named source of tools.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: ListTools, Execute, and Start must honor cancellation.
// - Errors: use ErrBackendDisabled and ErrToolNotFound where applicable.
// - Execute may return a non-nil value together with an error when the value
//   carries a rendered failure for the caller.
type Backend interface {
	// Kind returns the backend type, such as "minilang".
	Kind() string

	// Name returns the unique instance name. It is the tool namespace.
	Name() string

	Enabled() bool

	ListTools(ctx context.Context) ([]model.Tool, error)

	Execute(ctx context.Context, tool string, args map[string]any) (any, error)

	// Start prepares the backend, for example by prebuilding executables.
	Start(ctx context.Context) error

	Stop() error
}
