// Command toolforged serves the mini-language tools over HTTP or MCP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonwraymond/toolforge/config"
	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if f.version {
		fmt.Fprintln(stdout, "toolforged", version)
		return nil
	}

	logger, err := newLogger(stderr, f.logLevel, f.logFormat)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	cfg := config.Default()
	if f.configPath != "" {
		if cfg, err = config.Load(f.configPath); err != nil {
			return err
		}
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}

	a, err := newApp(cfg, logger, f.prebuild)
	if err != nil {
		return err
	}
	defer a.stop()

	logger.Info("starting toolforged",
		"version", version, "toolchains", len(cfg.Toolchains), "mcp", f.mcp)
	if err := a.start(ctx); err != nil {
		return err
	}

	if f.mcp {
		err = a.serveMCP(ctx)
	} else {
		err = a.serveHTTP(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("toolforged stopped")
	return nil
}
