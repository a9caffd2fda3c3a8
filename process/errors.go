package process

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for run outcomes.
var (
	// ErrLaunch indicates the executable was missing or could not be spawned.
	ErrLaunch = errors.New("process launch failed")

	// ErrTimeout indicates the wall-clock bound elapsed.
	ErrTimeout = errors.New("process timed out")

	// ErrRuntime indicates a nonzero exit.
	ErrRuntime = errors.New("process exited with failure")

	// ErrCanceled indicates the caller's context ended first.
	ErrCanceled = errors.New("process canceled")
)

// LaunchError reports an executable that could not be started.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Is matches ErrLaunch.
func (e *LaunchError) Is(target error) bool { return target == ErrLaunch }

// TimeoutError reports a run that exceeded its wall-clock bound.
type TimeoutError struct {
	Path    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s timed out after %s", e.Path, e.Timeout)
	}
	return fmt.Sprintf("%s timed out", e.Path)
}

// Is matches ErrTimeout.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// RuntimeError reports a nonzero exit, carrying the captured stderr.
type RuntimeError struct {
	Path     string
	ExitCode int
	Stderr   string
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Path, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Is matches ErrRuntime.
func (e *RuntimeError) Is(target error) bool { return target == ErrRuntime }

// Err maps the result of running req onto the error taxonomy.
// It returns nil for a zero exit.
func (r Result) Err(req Request) error {
	switch r.Status {
	case LaunchFailed:
		return &LaunchError{Path: req.Path, Err: r.Cause}
	case TimedOut:
		return &TimeoutError{Path: req.Path, Timeout: req.Timeout}
	case Canceled:
		return fmt.Errorf("%w: %s: %v", ErrCanceled, req.Path, r.Cause)
	}
	if r.ExitCode != 0 || r.Cause != nil {
		return &RuntimeError{Path: req.Path, ExitCode: r.ExitCode, Stderr: r.Stderr}
	}
	return nil
}
