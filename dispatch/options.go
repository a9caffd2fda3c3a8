package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/toolforge/classify"
	"github.com/jonwraymond/toolforge/process"
	"github.com/jonwraymond/toolforge/workspace"
	"github.com/prometheus/client_golang/prometheus"
)

// Default configuration values.
const (
	DefaultCCompiler      = "gcc"
	DefaultCompileTimeout = 10 * time.Second
	DefaultRunTimeout     = 5 * time.Second
	DefaultToolTimeout    = 15 * time.Second
)

// Errors returned by the engine.
var (
	ErrToolchainsRequired = errors.New("dispatch: Toolchains is required")
	ErrUnknownTool        = errors.New("dispatch: unknown tool")
)

// Toolchains resolves a toolchain id to a ready executable.
// *toolchain.Cache satisfies it.
type Toolchains interface {
	Executable(ctx context.Context, id string) (string, error)
}

// Logger is the logging surface used by the engine. *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures an Engine.
type Options struct {
	// Toolchains supplies executables for toolchain-backed tools.
	// Required.
	Toolchains Toolchains

	// Runner executes programs.
	// Default: process.New()
	Runner process.Runner

	// Workspaces hosts ad-hoc C programs.
	// Default: workspace.New with the engine's logger.
	Workspaces *workspace.Manager

	// Classifier diagnoses failed compilations.
	// Default: classify.New()
	Classifier *classify.Classifier

	// CCompiler compiles submitted C programs.
	// Default: "gcc"
	CCompiler string

	// CompileTimeout bounds compilation of submitted programs.
	// Default: 10s
	CompileTimeout time.Duration

	// RunTimeout bounds execution of submitted programs.
	// Default: 5s
	RunTimeout time.Duration

	// ToolTimeout bounds execution of toolchain executables.
	// Default: 15s
	ToolTimeout time.Duration

	// Logger is optional.
	Logger Logger

	// Registerer receives execution metrics. Optional.
	Registerer prometheus.Registerer
}

// validate checks that required fields are set.
func (o *Options) validate() error {
	if o.Toolchains == nil {
		return ErrToolchainsRequired
	}
	return nil
}

// applyDefaults sets default values for unset optional fields.
func (o *Options) applyDefaults() {
	if o.Runner == nil {
		o.Runner = process.New()
	}
	if o.Workspaces == nil {
		cfg := workspace.Config{}
		if o.Logger != nil {
			cfg.Logger = o.Logger
		}
		o.Workspaces = workspace.New(cfg)
	}
	if o.Classifier == nil {
		o.Classifier = classify.New()
	}
	if o.CCompiler == "" {
		o.CCompiler = DefaultCCompiler
	}
	if o.CompileTimeout <= 0 {
		o.CompileTimeout = DefaultCompileTimeout
	}
	if o.RunTimeout <= 0 {
		o.RunTimeout = DefaultRunTimeout
	}
	if o.ToolTimeout <= 0 {
		o.ToolTimeout = DefaultToolTimeout
	}
}
