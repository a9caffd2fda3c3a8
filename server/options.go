package server

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/toolforge/catalog"
	"github.com/jonwraymond/toolforge/toolchain"
	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Default configuration values.
const (
	DefaultAddr            = ":8080"
	DefaultNamespace       = "minilang"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultShutdownTimeout = 5 * time.Second
)

// ErrExecutorRequired is returned by New when Options.Executor is nil.
var ErrExecutorRequired = errors.New("server: Executor is required")

// Executor lists and runs tools by "backend:tool" ID.
// *backend.Aggregator satisfies it.
type Executor interface {
	ListAllTools(ctx context.Context) ([]model.Tool, error)
	Execute(ctx context.Context, toolID string, args map[string]any) (any, error)
}

// Catalog searches and describes tools. *catalog.Catalog satisfies it.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]catalog.Summary, error)
	Describe(ctx context.Context, id string, level tooldoc.DetailLevel) (tooldoc.ToolDoc, error)
}

// Toolchains exposes build-cache supervision. *toolchain.Cache satisfies it.
type Toolchains interface {
	Descriptors() []toolchain.Descriptor
	Descriptor(id string) (toolchain.Descriptor, bool)
	Invalidate(id string) error
}

// Logger is the logging surface used by the server. *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string

	// Executor runs tools. Required.
	Executor Executor

	// Namespace is the backend name that /api/interpret options resolve in.
	// Default: "minilang"
	Namespace string

	// Catalog enables tool search and description. Optional.
	Catalog Catalog

	// Toolchains enables the toolchain endpoints. Optional.
	Toolchains Toolchains

	// RateLimit is the per-IP request budget per RateWindow. Zero disables it.
	RateLimit  int
	RateWindow time.Duration

	// AllowedOrigins configures CORS. Empty disables the CORS handler.
	AllowedOrigins []string

	// MaxBodyBytes caps request bodies.
	// Default: 1 MiB
	MaxBodyBytes int64

	// Registry receives HTTP metrics and is served on /metrics. Optional.
	Registry *prometheus.Registry

	// Logger is optional.
	Logger Logger
}

func (o *Options) validate() error {
	if o.Executor == nil {
		return ErrExecutorRequired
	}
	return nil
}

func (o *Options) applyDefaults() {
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	if o.RateLimit > 0 && o.RateWindow <= 0 {
		o.RateWindow = time.Minute
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
}
