package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonwraymond/toolforge/config"
	"github.com/jonwraymond/toolforge/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	t.Setenv("TOOLFORGE_CONFIG", "/etc/toolforge.hcl")
	t.Setenv("TOOLFORGE_ADDR", "")

	f, err := parseFlags([]string{"-mcp", "-log-level", "debug"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "/etc/toolforge.hcl", f.configPath)
	assert.True(t, f.mcp)
	assert.True(t, f.prebuild)
	assert.Equal(t, "debug", f.logLevel)

	f, err = parseFlags([]string{"-config", "local.hcl"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "local.hcl", f.configPath)
}

func TestParseFlags_Errors(t *testing.T) {
	var exitErr *ExitError

	_, err := parseFlags([]string{"-nope"}, io.Discard)
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)

	_, err = parseFlags([]string{"extra"}, io.Discard)
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 2, exitErr.Code)

	_, err = parseFlags([]string{"-h"}, io.Discard)
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 0, exitErr.Code)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "toolchain", "calc")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"toolchain":"calc"`)

	_, err = newLogger(&buf, "loud", "text")
	assert.Error(t, err)
	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, io.Discard, []string{"-version"}))
	assert.Equal(t, "toolforged dev\n", out.String())
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`limits { run_timeout = "never" }`), 0o644))

	err := run(context.Background(), io.Discard, io.Discard, []string{"-config", path})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestApp_Wiring(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := newApp(config.Default(), logger, true)
	require.NoError(t, err)
	defer a.stop()

	ctx := context.Background()
	require.NoError(t, a.start(ctx))

	tools, err := a.agg.ListAllTools(ctx)
	require.NoError(t, err)
	assert.Len(t, tools, len(dispatch.Tools()))

	hits, err := a.catalog.Search(ctx, "boolean", 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.True(t, strings.HasPrefix(hits[0].ID, "minilang:"))

	v, err := a.agg.Execute(ctx, "minilang:calculator", map[string]any{"input": "int a = 2 * (3 + 4);"})
	require.NoError(t, err)
	res, ok := v.(dispatch.Result)
	require.True(t, ok)
	assert.Equal(t, "Result: 14", res.Output)
}
