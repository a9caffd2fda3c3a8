package toolchain

import (
	"path/filepath"
	"time"
)

// State is the build state of a toolchain.
type State uint8

const (
	Uncompiled State = iota
	Building
	Ready
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uncompiled:
		return "uncompiled"
	case Building:
		return "building"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON and logs.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Spec describes how to build one toolchain executable.
// Relative paths are resolved against Dir.
type Spec struct {
	// Name identifies the toolchain and names the generated files and executable.
	Name string `json:"name"`

	// Dir holds the source artifacts.
	Dir string `json:"dir"`

	// Lexer is the lexer-generator spec (.l). Optional.
	Lexer string `json:"lexer,omitempty"`

	// Grammar is the grammar-generator spec (.y). Optional.
	Grammar string `json:"grammar,omitempty"`

	// Sources are hand-written sources compiled with the generated ones.
	Sources []string `json:"sources,omitempty"`

	// OutputDir receives generated sources and the executable.
	// Default: Dir.
	OutputDir string `json:"output_dir,omitempty"`

	// Compiler overrides the builder's compiler for this toolchain.
	Compiler string `json:"compiler,omitempty"`

	// Flags are extra compiler arguments placed before -o.
	Flags []string `json:"flags,omitempty"`
}

func (s Spec) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Dir, p)
}

func (s Spec) outputDir() string {
	if s.OutputDir != "" {
		return s.path(s.OutputDir)
	}
	return s.Dir
}

// Descriptor is a point-in-time snapshot of a toolchain's build state.
type Descriptor struct {
	Spec       Spec      `json:"spec"`
	State      State     `json:"state"`
	Executable string    `json:"executable,omitempty"`
	Error      string    `json:"error,omitempty"`
	Builds     int       `json:"builds"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Err is the cached build error when State is Failed.
	Err error `json:"-"`
}

// entry is the mutable record behind a Descriptor. Guarded by Cache.mu.
type entry struct {
	spec       Spec
	state      State
	executable string
	err        error
	builds     int
	generation uint64

	// running is closed when the in-flight build ends. Nil when idle.
	running chan struct{}
	updatedAt  time.Time
}

func (e *entry) snapshot() Descriptor {
	d := Descriptor{
		Spec:       e.spec,
		State:      e.state,
		Executable: e.executable,
		Builds:     e.builds,
		UpdatedAt:  e.updatedAt,
		Err:        e.err,
	}
	if e.err != nil {
		d.Error = e.err.Error()
	}
	return d
}
