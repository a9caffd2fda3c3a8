package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonwraymond/toolforge/backend"
	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cast"
)

// BackendKind is the backend.Backend kind reported by Backend.
const BackendKind = "minilang"

// Prebuilder warms toolchains before the first request.
// *toolchain.Cache satisfies it.
type Prebuilder interface {
	Prebuild(ctx context.Context, ids ...string) error
}

// BackendOptions configures a Backend.
type BackendOptions struct {
	// Name is the backend instance name and tool namespace.
	// Default: "minilang"
	Name string

	// Engine runs the tools. Required.
	Engine *Engine

	// Prebuilder is called from Start when set.
	Prebuilder Prebuilder

	// Logger is optional.
	Logger Logger
}

// Backend exposes every Tool through the backend.Backend interface.
// Arguments are "input" and, for RunFullCCode, "stdin".
type Backend struct {
	name       string
	engine     *Engine
	prebuilder Prebuilder
	logger     Logger

	mu      sync.RWMutex
	enabled bool
}

var _ backend.Backend = (*Backend)(nil)

// NewBackend creates a Backend.
func NewBackend(opts BackendOptions) (*Backend, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("dispatch: backend requires an Engine")
	}
	if opts.Name == "" {
		opts.Name = BackendKind
	}
	return &Backend{
		name:       opts.Name,
		engine:     opts.Engine,
		prebuilder: opts.Prebuilder,
		logger:     opts.Logger,
		enabled:    true,
	}, nil
}

// Kind returns the backend kind.
func (b *Backend) Kind() string { return BackendKind }

// Name returns the backend instance name.
func (b *Backend) Name() string { return b.name }

// Enabled returns whether the backend is enabled.
func (b *Backend) Enabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

// SetEnabled enables or disables the backend.
func (b *Backend) SetEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = enabled
}

// InputSchema is the JSON schema shared by every tool.
func InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"input": map[string]any{
				"type":        "string",
				"description": "Source text or program for the tool.",
			},
			"stdin": map[string]any{
				"type":        "string",
				"description": "Standard input for run_full_c_code.",
			},
		},
		"required": []any{"input"},
	}
}

// ListTools returns one model.Tool per Tool, in declaration order.
func (b *Backend) ListTools(_ context.Context) ([]model.Tool, error) {
	tools := Tools()
	out := make([]model.Tool, 0, len(tools))
	for _, t := range tools {
		info := t.Info()
		out = append(out, model.Tool{
			Tool: mcp.Tool{
				Name:        info.Name,
				Title:       info.Title,
				Description: info.Description,
				InputSchema: InputSchema(),
			},
			Namespace: b.name,
			Tags:      info.Tags,
		})
	}
	return out, nil
}

// Execute runs the named tool. The returned value is a Result; it is
// returned alongside a non-nil error so callers can still show its Output.
func (b *Backend) Execute(ctx context.Context, tool string, args map[string]any) (any, error) {
	if !b.Enabled() {
		return nil, backend.ErrBackendDisabled
	}
	t, err := ParseTool(tool)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", backend.ErrToolNotFound, tool)
	}
	p := Payload{
		Input: cast.ToString(args["input"]),
		Stdin: cast.ToString(args["stdin"]),
	}
	return b.engine.Execute(ctx, t, p)
}

// Start prebuilds toolchains when a Prebuilder is configured.
func (b *Backend) Start(ctx context.Context) error {
	if b.prebuilder == nil {
		return nil
	}
	if b.logger != nil {
		b.logger.Info("prebuilding toolchains", "backend", b.name)
	}
	return b.prebuilder.Prebuild(ctx)
}

// Stop is a no-op; toolchain executables outlive the backend.
func (b *Backend) Stop() error {
	return nil
}

// Doc returns the documentation entry for a tool name.
func (b *Backend) Doc(tool string) (tooldoc.DocEntry, bool) {
	t, err := ParseTool(tool)
	if err != nil {
		return tooldoc.DocEntry{}, false
	}
	return t.Doc(), true
}
