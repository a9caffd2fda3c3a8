// Package backend groups tool sources behind one interface.
//
// A [Backend] lists tools and executes them by name. The [Registry] holds
// backends by instance name, and the [Aggregator] addresses tools across all
// enabled backends with "backend:tool" IDs:
//
//	registry := backend.NewRegistry()
//	_ = registry.Register(minilang) // a *dispatch.Backend
//
//	agg := backend.NewAggregator(registry)
//	tools, _ := agg.ListAllTools(ctx)
//	out, err := agg.Execute(ctx, "minilang:calculator", map[string]any{"input": src})
package backend
