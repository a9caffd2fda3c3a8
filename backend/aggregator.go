package backend

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonwraymond/toolfoundation/model"
)

// Aggregator lists and invokes tools across a registry's enabled backends
// using "backend:tool" IDs.
type Aggregator struct {
	registry *Registry
}

// NewAggregator creates an aggregator over registry.
func NewAggregator(registry *Registry) *Aggregator {
	return &Aggregator{registry: registry}
}

// ListAllTools returns tools from all enabled backends, sorted by ID.
// Tools without a namespace take their backend's name.
func (a *Aggregator) ListAllTools(ctx context.Context) ([]model.Tool, error) {
	var all []model.Tool
	for _, b := range a.registry.ListEnabled() {
		tools, err := b.ListTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", b.Name(), err)
		}
		for i := range tools {
			if tools[i].Namespace == "" {
				tools[i].Namespace = b.Name()
			}
		}
		all = append(all, tools...)
	}
	sort.Slice(all, func(i, j int) bool {
		return FormatToolID(all[i].Namespace, all[i].Name) < FormatToolID(all[j].Namespace, all[j].Name)
	})
	return all, nil
}

// Execute invokes the tool named by toolID.
func (a *Aggregator) Execute(ctx context.Context, toolID string, args map[string]any) (any, error) {
	backendName, tool, err := ParseToolID(toolID)
	if err != nil {
		return nil, err
	}
	if backendName == "" {
		return nil, fmt.Errorf("%w: %q has no backend", ErrInvalidToolID, toolID)
	}

	b, ok := a.registry.Get(backendName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, backendName)
	}
	if !b.Enabled() {
		return nil, fmt.Errorf("%w: %s", ErrBackendDisabled, backendName)
	}
	return b.Execute(ctx, tool, args)
}

// ParseToolID splits "backend:tool".
func ParseToolID(id string) (backendName, tool string, err error) {
	backendName, tool, err = model.ParseToolID(id)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidToolID, id)
	}
	return backendName, tool, nil
}

// FormatToolID joins a backend name and tool name.
func FormatToolID(backendName, tool string) string {
	if backendName == "" {
		return tool
	}
	return backendName + ":" + tool
}
