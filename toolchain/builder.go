package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/jonwraymond/toolforge/process"
)

// Default tool names and limits for GeneratorBuilder.
const (
	DefaultBison       = "bison"
	DefaultFlex        = "flex"
	DefaultCompiler    = "g++"
	DefaultCCompiler   = "gcc"
	DefaultStepTimeout = 10 * time.Second
)

// GeneratorBuilder builds a toolchain by running the grammar generator,
// the lexer generator, and the native compiler, in that order.
// Generated files and the executable are written to Spec.OutputDir (Spec.Dir
// when unset), and every step runs with that directory as its working dir.
type GeneratorBuilder struct {
	// Runner executes each step. Required.
	Runner process.Runner

	// Bison is the grammar-generator executable. Default: "bison".
	Bison string

	// Flex is the lexer-generator executable. Default: "flex".
	Flex string

	// Compiler links generated parsers. Default: "g++".
	Compiler string

	// CCompiler compiles specs with no generator inputs. Default: "gcc".
	CCompiler string

	// StepTimeout bounds each step. Default: 10s.
	StepTimeout time.Duration

	// Logger is optional.
	Logger Logger
}

var _ Builder = (*GeneratorBuilder)(nil)

// Build runs the steps for spec and returns the absolute executable path.
// A failing step yields a *BuildError whose Message is the tool's stderr.
func (b *GeneratorBuilder) Build(ctx context.Context, spec Spec) (string, error) {
	if b.Runner == nil {
		return "", &BuildError{Toolchain: spec.Name, Step: StepPrepare, Message: "no process runner configured", Err: ErrInvalidSpec}
	}

	outDir, err := filepath.Abs(spec.outputDir())
	if err != nil {
		return "", &BuildError{Toolchain: spec.Name, Step: StepPrepare, Message: err.Error(), Err: err}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", &BuildError{Toolchain: spec.Name, Step: StepPrepare, Message: err.Error(), Err: err}
	}

	var inputs []string
	if spec.Grammar != "" {
		grammar, err := filepath.Abs(spec.path(spec.Grammar))
		if err != nil {
			return "", &BuildError{Toolchain: spec.Name, Step: StepPrepare, Message: err.Error(), Err: err}
		}
		parser := spec.Name + ".tab.c"
		if err := b.step(ctx, spec.Name, StepGrammar, outDir, or(b.Bison, DefaultBison),
			"-d", "-o", parser, grammar); err != nil {
			return "", err
		}
		inputs = append(inputs, parser)
	}
	if spec.Lexer != "" {
		lexer, err := filepath.Abs(spec.path(spec.Lexer))
		if err != nil {
			return "", &BuildError{Toolchain: spec.Name, Step: StepPrepare, Message: err.Error(), Err: err}
		}
		// Toolchains may share an output directory.
		scanner := spec.Name + ".lex.yy.c"
		if err := b.step(ctx, spec.Name, StepLexer, outDir, or(b.Flex, DefaultFlex),
			"-o", scanner, lexer); err != nil {
			return "", err
		}
		inputs = append(inputs, scanner)
	}
	for _, src := range spec.Sources {
		abs, err := filepath.Abs(spec.path(src))
		if err != nil {
			return "", &BuildError{Toolchain: spec.Name, Step: StepPrepare, Message: err.Error(), Err: err}
		}
		inputs = append(inputs, abs)
	}

	compiler := spec.Compiler
	if compiler == "" {
		if spec.Grammar == "" && spec.Lexer == "" {
			compiler = or(b.CCompiler, DefaultCCompiler)
		} else {
			compiler = or(b.Compiler, DefaultCompiler)
		}
	}

	exe := executableName(spec.Name)
	args := append(inputs, spec.Flags...)
	args = append(args, "-o", exe)
	if err := b.step(ctx, spec.Name, StepCompile, outDir, compiler, args...); err != nil {
		return "", err
	}
	return filepath.Join(outDir, exe), nil
}

func (b *GeneratorBuilder) step(ctx context.Context, name, step, dir, tool string, args ...string) error {
	timeout := b.StepTimeout
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	req := process.Request{Path: tool, Args: args, Dir: dir, Timeout: timeout}
	if b.Logger != nil {
		b.Logger.Info("toolchain step", "toolchain", name, "step", step, "command", req.CommandLine())
	}

	res := b.Runner.Run(ctx, req)
	err := res.Err(req)
	if err == nil {
		return nil
	}

	var msg string
	switch res.Status {
	case process.LaunchFailed:
		msg = fmt.Sprintf("Compiler not found: %s. Make sure Flex, Bison, and GCC are installed and in PATH.", tool)
	case process.TimedOut:
		msg = fmt.Sprintf("%s timed out after %s", tool, timeout)
	case process.Canceled:
		msg = fmt.Sprintf("%s canceled", tool)
	default:
		msg = res.Stderr
		if msg == "" {
			msg = fmt.Sprintf("%s exited with code %d", tool, res.ExitCode)
		}
	}
	if b.Logger != nil {
		b.Logger.Warn("toolchain step failed", "toolchain", name, "step", step, "status", res.Status.String(), "error", err)
	}
	return &BuildError{Toolchain: name, Step: step, Message: msg, Err: err}
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
