package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// Errors returned by the workspace manager.
var (
	ErrInvalidFileName = errors.New("workspace: invalid file name")
	ErrNilFunc         = errors.New("workspace: callback is required")
)

// DefaultPrefix is used when neither the manager nor the file name yields a prefix.
const DefaultPrefix = "toolforge"

// Logger receives cleanup failures. *slog.Logger satisfies it.
type Logger interface {
	Warn(msg string, args ...any)
}

// Config configures a Manager.
type Config struct {
	// Root is the parent directory for workspaces.
	// Default: os.TempDir()
	Root string

	// Prefix is prepended to every workspace directory name.
	// Default: derived from the source file name.
	Prefix string

	// Logger is optional.
	Logger Logger
}

// Workspace is a scoped directory holding one written source file.
// It is only valid inside the callback passed to Manager.With.
type Workspace struct {
	// Dir is the absolute path of the workspace directory.
	Dir string

	// SourcePath is the absolute path of the written source file.
	SourcePath string
}

// Path returns the absolute path of name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Manager creates fresh, uniquely named workspaces.
// A Manager is safe for concurrent use; workspaces are never shared.
type Manager struct {
	root   string
	prefix string
	logger Logger
}

// New creates a Manager from cfg.
func New(cfg Config) *Manager {
	return &Manager{
		root:   cfg.Root,
		prefix: cfg.Prefix,
		logger: cfg.Logger,
	}
}

// With creates a workspace, writes source to fileName inside it, and calls fn.
// The directory and everything in it is removed on every exit path,
// including a panic in fn. Removal failures are joined with fn's error.
func (m *Manager) With(source, fileName string, fn func(*Workspace) error) (err error) {
	if fn == nil {
		return ErrNilFunc
	}
	if err := validateFileName(fileName); err != nil {
		return err
	}

	dir, err := os.MkdirTemp(m.root, m.dirPattern(fileName))
	if err != nil {
		return fmt.Errorf("workspace: create directory: %w", err)
	}
	if abs, absErr := filepath.Abs(dir); absErr == nil {
		dir = abs
	}

	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			if m.logger != nil {
				m.logger.Warn("workspace cleanup failed", "dir", dir, "error", rmErr)
			}
			err = errors.Join(err, fmt.Errorf("workspace: cleanup %s: %w", dir, rmErr))
		}
	}()

	ws := &Workspace{Dir: dir, SourcePath: filepath.Join(dir, fileName)}
	if err := os.WriteFile(ws.SourcePath, []byte(source), 0o600); err != nil {
		return fmt.Errorf("workspace: write source: %w", err)
	}
	return fn(ws)
}

func (m *Manager) dirPattern(fileName string) string {
	prefix := m.prefix
	if prefix == "" {
		stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
		prefix = slug.Make(stem)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "-*"
}

func validateFileName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	case filepath.Base(name) != name, strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q must be a base name", ErrInvalidFileName, name)
	}
	return nil
}
