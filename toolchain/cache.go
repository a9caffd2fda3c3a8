package toolchain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Builder produces an executable from a Spec and returns its absolute path.
//
// Contract:
// - Concurrency: Build may be called concurrently for different specs.
// - Errors: failures should be *BuildError so callers can report the step.
type Builder interface {
	Build(ctx context.Context, spec Spec) (string, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(ctx context.Context, spec Spec) (string, error)

// Build calls f.
func (f BuilderFunc) Build(ctx context.Context, spec Spec) (string, error) {
	return f(ctx, spec)
}

// Logger is the logging surface used by the cache. *slog.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config configures a Cache.
type Config struct {
	// Builder performs builds. Required.
	Builder Builder

	// Logger is optional.
	Logger Logger

	// Metrics is optional.
	Metrics *Metrics

	// BuildTimeout bounds one full build, independent of any caller.
	// Default: 2m.
	BuildTimeout time.Duration
}

// DefaultBuildTimeout bounds a whole build when Config leaves it zero.
const DefaultBuildTimeout = 2 * time.Minute

// Cache memoizes toolchain builds for the process lifetime.
//
// Ready and Failed are terminal: a toolchain is built at most once unless
// Invalidate resets it. Concurrent callers for the same id share one build.
type Cache struct {
	builder Builder
	logger  Logger
	metrics *Metrics
	timeout time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
}

// NewCache creates a Cache.
func NewCache(cfg Config) (*Cache, error) {
	if cfg.Builder == nil {
		return nil, fmt.Errorf("%w: builder is required", ErrInvalidSpec)
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = DefaultBuildTimeout
	}
	return &Cache{
		builder: cfg.Builder,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		timeout: cfg.BuildTimeout,
		entries: make(map[string]*entry),
	}, nil
}

// Register adds a toolchain in the Uncompiled state.
func (c *Cache) Register(spec Spec) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSpec)
	}
	if spec.Lexer == "" && spec.Grammar == "" && len(spec.Sources) == 0 {
		return fmt.Errorf("%w: %s has no sources", ErrInvalidSpec, spec.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolchainExists, spec.Name)
	}
	c.entries[spec.Name] = &entry{spec: spec, state: Uncompiled, updatedAt: time.Now()}
	return nil
}

// Executable returns the path of the built executable for id, building it
// first if needed. A cached failure is returned without rebuilding.
// If ctx ends while a build is in flight, Executable returns ctx.Err() and
// the build continues for other waiters.
func (c *Cache) Executable(ctx context.Context, id string) (string, error) {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrUnknownToolchain, id)
	}
	switch e.state {
	case Ready:
		path := e.executable
		c.mu.Unlock()
		c.metrics.observeLookup(id, "hit")
		return path, nil
	case Failed:
		err := e.err
		c.mu.Unlock()
		c.metrics.observeLookup(id, "failed")
		return "", err
	}
	c.mu.Unlock()
	c.metrics.observeLookup(id, "miss")

	ch := c.group.DoChan(id, func() (any, error) {
		return c.build(id)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// build runs inside the single-flight group for id. A build left running by
// Invalidate is waited out first, so builds of one toolchain never overlap.
func (c *Cache) build(id string) (string, error) {
	c.mu.Lock()
	var (
		e    *entry
		spec Spec
		gen  uint64
	)
	for {
		var ok bool
		e, ok = c.entries[id]
		if !ok {
			c.mu.Unlock()
			return "", fmt.Errorf("%w: %s", ErrUnknownToolchain, id)
		}
		// A build that finished between the caller's check and this call wins.
		switch e.state {
		case Ready:
			path := e.executable
			c.mu.Unlock()
			return path, nil
		case Failed:
			err := e.err
			c.mu.Unlock()
			return "", err
		}
		if e.running == nil {
			break
		}
		running := e.running
		c.mu.Unlock()
		<-running
		c.mu.Lock()
	}
	e.state = Building
	e.running = make(chan struct{})
	e.updatedAt = time.Now()
	spec = e.spec
	gen = e.generation
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("building toolchain", "toolchain", id)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := time.Now()
	path, err := c.builder.Build(ctx, spec)
	elapsed := time.Since(start)
	c.metrics.observeBuild(id, err, elapsed)

	c.mu.Lock()
	close(e.running)
	e.running = nil
	if e.generation == gen {
		e.builds++
		e.updatedAt = time.Now()
		if err != nil {
			e.state = Failed
			e.err = err
			e.executable = ""
		} else {
			e.state = Ready
			e.executable = path
			e.err = nil
		}
	}
	c.mu.Unlock()

	if c.logger != nil {
		if err != nil {
			c.logger.Error("toolchain build failed", "toolchain", id, "duration", elapsed, "error", err)
		} else {
			c.logger.Info("toolchain ready", "toolchain", id, "executable", path, "duration", elapsed)
		}
	}
	return path, err
}

// Invalidate resets id to Uncompiled so the next Executable call rebuilds.
// A build in flight when Invalidate is called still answers its waiters but
// does not update the descriptor, and the rebuild starts only after it ends.
func (c *Cache) Invalidate(id string) error {
	c.mu.Lock()
	e, ok := c.entries[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownToolchain, id)
	}
	e.generation++
	e.state = Uncompiled
	e.executable = ""
	e.err = nil
	e.updatedAt = time.Now()
	c.mu.Unlock()

	c.group.Forget(id)
	if c.logger != nil {
		c.logger.Warn("toolchain invalidated", "toolchain", id)
	}
	return nil
}

// Descriptor returns a snapshot of id's build state.
func (c *Cache) Descriptor(id string) (Descriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return Descriptor{}, false
	}
	return e.snapshot(), true
}

// Descriptors returns snapshots of every toolchain, sorted by name.
func (c *Cache) Descriptors() []Descriptor {
	c.mu.Lock()
	out := make([]Descriptor, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.snapshot())
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Spec.Name < out[j].Spec.Name })
	return out
}

// Names returns registered toolchain ids, sorted.
func (c *Cache) Names() []string {
	c.mu.Lock()
	out := make([]string, 0, len(c.entries))
	for name := range c.entries {
		out = append(out, name)
	}
	c.mu.Unlock()
	sort.Strings(out)
	return out
}

// Prebuild builds the given toolchains concurrently, or all of them when
// ids is empty. Build failures are cached, not returned; only unknown ids
// and context errors are reported.
func (c *Cache) Prebuild(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		ids = c.Names()
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			_, err := c.Executable(ctx, id)
			switch {
			case err == nil:
				return nil
			case ctx.Err() != nil:
				return ctx.Err()
			case errors.Is(err, ErrUnknownToolchain):
				return err
			default:
				return nil
			}
		})
	}
	return g.Wait()
}
