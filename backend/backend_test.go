package backend

import (
	"context"
	"errors"

	"github.com/jonwraymond/toolfoundation/model"
)

type fakeBackend struct {
	kind    string
	name    string
	enabled bool
	tools   []model.Tool
	listErr error
	execFn  func(ctx context.Context, tool string, args map[string]any) (any, error)

	started  int
	startErr error
	stopped  int
	stopErr  error
}

var _ Backend = (*fakeBackend)(nil)

func (f *fakeBackend) Kind() string  { return f.kind }
func (f *fakeBackend) Name() string  { return f.name }
func (f *fakeBackend) Enabled() bool { return f.enabled }

func (f *fakeBackend) ListTools(context.Context) ([]model.Tool, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Tool, len(f.tools))
	copy(out, f.tools)
	return out, nil
}

func (f *fakeBackend) Execute(ctx context.Context, tool string, args map[string]any) (any, error) {
	if f.execFn == nil {
		return nil, errors.New("no exec function")
	}
	return f.execFn(ctx, tool, args)
}

func (f *fakeBackend) Start(context.Context) error {
	f.started++
	return f.startErr
}

func (f *fakeBackend) Stop() error {
	f.stopped++
	return f.stopErr
}
