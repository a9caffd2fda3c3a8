package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ExitError carries a process exit code out of run.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

type flags struct {
	configPath string
	addr       string
	mcp        bool
	prebuild   bool
	logLevel   string
	logFormat  string
	version    bool
}

// parseFlags reads args. TOOLFORGE_CONFIG and TOOLFORGE_ADDR supply defaults
// that explicit flags override.
func parseFlags(args []string, out io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("toolforged", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&f.configPath, "config", os.Getenv("TOOLFORGE_CONFIG"), "path to the HCL configuration file")
	fs.StringVar(&f.addr, "addr", os.Getenv("TOOLFORGE_ADDR"), "HTTP listen address (overrides the config file)")
	fs.BoolVar(&f.mcp, "mcp", false, "serve MCP over stdio instead of HTTP")
	fs.BoolVar(&f.prebuild, "prebuild", true, "build every configured toolchain at startup")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "text", "log format: text or json")
	fs.BoolVar(&f.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return f, &ExitError{Code: 0}
		}
		return f, &ExitError{Code: 2, Message: err.Error()}
	}
	if fs.NArg() > 0 {
		return f, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(fs.Args(), " "))}
	}
	return f, nil
}

// newLogger builds the process logger. MCP mode owns stdout, so logs always
// go to w (stderr in production).
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
