package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonwraymond/toolforge/backend"
	"github.com/jonwraymond/toolforge/catalog"
	"github.com/jonwraymond/toolforge/config"
	"github.com/jonwraymond/toolforge/dispatch"
	"github.com/jonwraymond/toolforge/mcpserver"
	"github.com/jonwraymond/toolforge/process"
	"github.com/jonwraymond/toolforge/server"
	"github.com/jonwraymond/toolforge/toolchain"
	"github.com/jonwraymond/toolforge/workspace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// app is the wired daemon.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	metrics  *prometheus.Registry
	cache    *toolchain.Cache
	registry *backend.Registry
	agg      *backend.Aggregator
	catalog  *catalog.Catalog
}

func newApp(cfg config.Config, logger *slog.Logger, prebuild bool) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	runner := process.New()
	builder := &toolchain.GeneratorBuilder{
		Runner:    runner,
		Bison:     cfg.Tools.Bison,
		Flex:      cfg.Tools.Flex,
		Compiler:  cfg.Tools.CXXCompiler,
		CCompiler: cfg.Tools.CCompiler,
		Logger:    logger,
	}
	cache, err := toolchain.NewCache(toolchain.Config{
		Builder:      builder,
		Logger:       logger,
		Metrics:      toolchain.NewMetrics(reg),
		BuildTimeout: cfg.Limits.BuildTimeout,
	})
	if err != nil {
		return nil, err
	}
	for _, spec := range cfg.Toolchains {
		if err := cache.Register(spec); err != nil {
			return nil, fmt.Errorf("register toolchain %s: %w", spec.Name, err)
		}
	}

	engine, err := dispatch.New(dispatch.Options{
		Toolchains:     cache,
		Runner:         runner,
		Workspaces:     workspace.New(workspace.Config{Logger: logger}),
		CCompiler:      cfg.Tools.CCompiler,
		CompileTimeout: cfg.Limits.CompileTimeout,
		RunTimeout:     cfg.Limits.RunTimeout,
		ToolTimeout:    cfg.Limits.ToolTimeout,
		Logger:         logger,
		Registerer:     reg,
	})
	if err != nil {
		return nil, err
	}

	bopts := dispatch.BackendOptions{Engine: engine, Logger: logger}
	if prebuild {
		bopts.Prebuilder = cache
	}
	minilang, err := dispatch.NewBackend(bopts)
	if err != nil {
		return nil, err
	}
	registry := backend.NewRegistry()
	if err := registry.Register(minilang); err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  reg,
		cache:    cache,
		registry: registry,
		agg:      backend.NewAggregator(registry),
		catalog:  catalog.New(logger),
	}, nil
}

// start runs backend startup and indexes the tools. Prebuild failures are
// cached per toolchain and only logged here.
func (a *app) start(ctx context.Context) error {
	if err := a.registry.StartAll(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn("backend startup reported errors", "error", err)
	}
	for _, d := range a.cache.Descriptors() {
		if d.State == toolchain.Failed {
			a.logger.Warn("toolchain unavailable", "toolchain", d.Spec.Name, "error", d.Error)
		}
	}
	return a.catalog.Load(ctx, a.registry)
}

func (a *app) serveHTTP(ctx context.Context) error {
	srv, err := server.New(server.Options{
		Addr:           a.cfg.Server.Addr,
		Executor:       a.agg,
		Namespace:      dispatch.BackendKind,
		Catalog:        a.catalog,
		Toolchains:     a.cache,
		RateLimit:      a.cfg.Server.RateLimit,
		RateWindow:     a.cfg.Server.RateWindow,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Registry:       a.metrics,
		Logger:         a.logger,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

func (a *app) serveMCP(ctx context.Context) error {
	srv, err := mcpserver.New(ctx, mcpserver.Options{
		Executor: a.agg,
		Version:  version,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func (a *app) stop() {
	if err := a.registry.StopAll(); err != nil {
		a.logger.Warn("backend shutdown reported errors", "error", err)
	}
}
