package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry holds backends by name.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds b. Names must be unique.
func (r *Registry) Register(b Backend) error {
	if b == nil {
		return fmt.Errorf("backend is nil")
	}
	name := b.Name()
	if name == "" {
		return fmt.Errorf("backend name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("%w: %s", ErrBackendExists, name)
	}
	r.backends[name] = b
	return nil
}

// Unregister stops and removes the named backend.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	b, exists := r.backends[name]
	delete(r.backends, name)
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}
	return b.Stop()
}

// Get returns the named backend.
func (r *Registry) Get(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// List returns all backends sorted by name.
func (r *Registry) List() []Backend {
	r.mu.RLock()
	out := make([]Backend, 0, len(r.backends))
	for _, b := range r.backends {
		out = append(out, b)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ListEnabled returns enabled backends sorted by name.
func (r *Registry) ListEnabled() []Backend {
	all := r.List()
	out := all[:0]
	for _, b := range all {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}

// Names returns backend names, sorted.
func (r *Registry) Names() []string {
	all := r.List()
	out := make([]string, len(all))
	for i, b := range all {
		out[i] = b.Name()
	}
	return out
}

// StartAll starts every enabled backend and joins their errors.
func (r *Registry) StartAll(ctx context.Context) error {
	var errs []error
	for _, b := range r.ListEnabled() {
		if err := b.Start(ctx); err != nil {
			errs = append(errs, fmt.Errorf("start %s: %w", b.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// StopAll stops every backend and joins their errors.
func (r *Registry) StopAll() error {
	var errs []error
	for _, b := range r.List() {
		if err := b.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", b.Name(), err))
		}
	}
	return errors.Join(errs...)
}
