package mcpserver

import (
	"context"
	"errors"
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/jonwraymond/toolforge/backend"
	"github.com/jonwraymond/toolforge/dispatch"
	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cast"
)

// Default implementation identity.
const (
	DefaultName    = "toolforge"
	DefaultVersion = "v0.1.0"
)

// ErrExecutorRequired is returned by New when Options.Executor is nil.
var ErrExecutorRequired = errors.New("mcpserver: Executor is required")

// Executor lists and runs tools by "backend:tool" ID.
// *backend.Aggregator satisfies it.
type Executor interface {
	ListAllTools(ctx context.Context) ([]model.Tool, error)
	Execute(ctx context.Context, toolID string, args map[string]any) (any, error)
}

// Logger is the logging surface used by the server.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Options configures a Server.
type Options struct {
	// Executor runs tools. Required.
	Executor Executor

	// Name and Version identify the server to clients.
	Name    string
	Version string

	Logger Logger
}

// Server exposes every executor tool as an MCP tool.
type Server struct {
	mcp    *mcp.Server
	exec   Executor
	logger Logger

	// ids maps MCP tool names to executor tool IDs.
	ids map[string]string
}

// New lists the executor's tools and registers one MCP tool for each.
// Tool names are bare unless two backends serve the same name, in which
// case later ones are qualified as "backend.tool".
func New(ctx context.Context, opts Options) (*Server, error) {
	if opts.Executor == nil {
		return nil, ErrExecutorRequired
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}

	tools, err := opts.Executor.ListAllTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("mcpserver: list tools: %w", err)
	}

	s := &Server{
		mcp:    mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, nil),
		exec:   opts.Executor,
		logger: opts.Logger,
		ids:    make(map[string]string, len(tools)),
	}
	for _, t := range tools {
		name := t.Name
		if _, taken := s.ids[name]; taken {
			name = t.Namespace + "." + t.Name
		}
		s.ids[name] = backend.FormatToolID(t.Namespace, t.Name)

		tool := t.Tool
		tool.Name = name
		if tool.InputSchema == nil {
			tool.InputSchema = dispatch.InputSchema()
		}
		s.mcp.AddTool(&tool, s.handler(name))
	}
	if s.logger != nil {
		s.logger.Info("mcp tools registered", "count", len(s.ids))
	}
	return s, nil
}

// Server returns the underlying MCP server.
func (s *Server) Server() *mcp.Server {
	return s.mcp
}

// Run serves over stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := gojson.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult("invalid arguments: " + err.Error()), nil
			}
		}

		v, err := s.exec.Execute(ctx, s.ids[name], args)
		if res, ok := v.(dispatch.Result); ok {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: res.Output}},
				IsError: !res.OK(),
			}, nil
		}
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("mcp tool call failed", "tool", name, "error", err)
			}
			return errorResult(err.Error()), nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: cast.ToString(v)}},
		}, nil
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
