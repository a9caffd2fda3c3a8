package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/toolforge/backend"
	"github.com/jonwraymond/tooldiscovery/index"
	"github.com/jonwraymond/tooldiscovery/search"
	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"
)

// DefaultSearchLimit caps Search when the caller passes a non-positive limit.
const DefaultSearchLimit = 20

// ErrInvalidDetail is returned by ParseDetail for unknown levels.
var ErrInvalidDetail = errors.New("catalog: invalid detail level")

// Summary is a search hit.
type Summary = index.Summary

// Documenter is implemented by backends that carry per-tool documentation.
// *dispatch.Backend satisfies it.
type Documenter interface {
	Doc(tool string) (tooldoc.DocEntry, bool)
}

// Logger is the logging surface used by the catalog.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Catalog indexes the tools of a backend registry for search and description.
type Catalog struct {
	index  index.Index
	docs   *tooldoc.InMemoryStore
	logger Logger
}

// New creates an empty catalog ranked with BM25.
func New(logger Logger) *Catalog {
	idx := index.NewInMemoryIndex(index.IndexOptions{
		Searcher: search.NewBM25Searcher(search.BM25Config{}),
	})
	return &Catalog{
		index:  idx,
		docs:   tooldoc.NewInMemoryStore(tooldoc.StoreOptions{Index: idx}),
		logger: logger,
	}
}

// Load indexes every tool of every enabled backend in reg. Documentation is
// registered for backends implementing Documenter.
func (c *Catalog) Load(ctx context.Context, reg *backend.Registry) error {
	count := 0
	for _, b := range reg.ListEnabled() {
		tools, err := b.ListTools(ctx)
		if err != nil {
			return fmt.Errorf("catalog: list %s: %w", b.Name(), err)
		}
		documenter, _ := b.(Documenter)
		for _, tool := range tools {
			if tool.Namespace == "" {
				tool.Namespace = b.Name()
			}
			if err := c.Add(tool, b.Name(), documenter); err != nil {
				return err
			}
			count++
		}
	}
	if c.logger != nil {
		c.logger.Info("catalog loaded", "tools", count)
	}
	return nil
}

// Add indexes one tool served by the named backend.
func (c *Catalog) Add(tool model.Tool, backendName string, documenter Documenter) error {
	if err := c.index.RegisterTool(tool, model.NewLocalBackend(backendName)); err != nil {
		return fmt.Errorf("catalog: register %s: %w", tool.Name, err)
	}
	if documenter == nil {
		return nil
	}
	entry, ok := documenter.Doc(tool.Name)
	if !ok {
		return nil
	}
	id := backend.FormatToolID(tool.Namespace, tool.Name)
	if err := c.docs.RegisterDoc(id, entry); err != nil && c.logger != nil {
		c.logger.Warn("tool documentation rejected", "tool", id, "error", err)
	}
	return nil
}

// Search ranks indexed tools against query. An empty query lists tools.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return c.index.Search(query, limit)
}

// Describe returns documentation for a tool ID at the given detail level.
func (c *Catalog) Describe(ctx context.Context, id string, level tooldoc.DetailLevel) (tooldoc.ToolDoc, error) {
	if err := ctx.Err(); err != nil {
		return tooldoc.ToolDoc{}, err
	}
	return c.docs.DescribeTool(id, level)
}

// Examples returns up to maxExamples usage examples for a tool ID.
func (c *Catalog) Examples(ctx context.Context, id string, maxExamples int) ([]tooldoc.ToolExample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.docs.ListExamples(id, maxExamples)
}

// Namespaces lists indexed namespaces.
func (c *Catalog) Namespaces(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.index.ListNamespaces()
}

// ParseDetail maps "summary" or "full" to a detail level. Empty means summary.
func ParseDetail(s string) (tooldoc.DetailLevel, error) {
	switch s {
	case "", string(tooldoc.DetailSummary):
		return tooldoc.DetailSummary, nil
	case string(tooldoc.DetailFull):
		return tooldoc.DetailFull, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDetail, s)
}
