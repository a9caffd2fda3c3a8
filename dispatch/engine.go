package dispatch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/jonwraymond/toolforge/arith"
	"github.com/jonwraymond/toolforge/classify"
	"github.com/jonwraymond/toolforge/interp"
	"github.com/jonwraymond/toolforge/process"
	"github.com/jonwraymond/toolforge/toolchain"
	"github.com/jonwraymond/toolforge/workspace"
	"github.com/spf13/cast"
)

// Payload is the input to one tool invocation.
type Payload struct {
	// Input is the tool's main text, usually C source.
	Input string

	// Stdin is fed to submitted programs. Only RunFullCCode uses it.
	Stdin string
}

// Result is the outcome of one tool invocation.
type Result struct {
	Tool Tool

	// Output is the rendered text shown to the user. It is set even when
	// Err is non-nil.
	Output string

	// Record is the diagnosis for classifier output and failed compilations.
	Record *classify.Record

	Duration time.Duration

	// Err is the typed failure behind Output, if any: a *toolchain.BuildError,
	// a process error, or ErrUnknownTool.
	Err error
}

// OK returns true if the result has no error.
func (r Result) OK() bool {
	return r.Err == nil
}

// Engine routes tool invocations to their components.
type Engine struct {
	opts    Options
	metrics *metrics
}

// New creates an Engine with the given options.
func New(opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts.applyDefaults()

	return &Engine{
		opts:    opts,
		metrics: newMetrics(opts.Registerer),
	}, nil
}

// Execute runs tool with payload. The returned error equals Result.Err.
// Statement errors in the command language and failed user compilations
// are part of the output, not errors.
func (e *Engine) Execute(ctx context.Context, tool Tool, p Payload) (Result, error) {
	start := time.Now()

	var res Result
	switch tool {
	case Calculator:
		res = e.calculator(p)
	case ArithmeticCalculator:
		res = e.arithmeticCalculator(ctx, p)
	case OperatorDelimiterRecognizer, ParserActionPrinter, SemanticActionSimulator:
		res = e.passthrough(ctx, tool, p)
	case BooleanExpressionEvaluator:
		res = e.booleanEvaluator(ctx, p)
	case ReverseConcatenate:
		res = e.reverseConcatenate(ctx, p)
	case CompilerErrorClassifier:
		res = e.classifyDiagnostic(p)
	case CommandLanguageInterpreter:
		res = Result{Output: interp.Run(p.Input)}
	case RunFullCCode:
		res = e.runFullCCode(ctx, p)
	default:
		err := fmt.Errorf("%w: %s", ErrUnknownTool, tool)
		res = Result{Output: "Unknown option: " + tool.String(), Err: err}
	}

	res.Tool = tool
	res.Duration = time.Since(start)
	e.metrics.observe(tool, res.Err, res.Duration)
	if res.Err != nil && e.opts.Logger != nil {
		e.opts.Logger.Warn("tool execution failed", "tool", tool.String(), "duration", res.Duration, "error", res.Err)
	}
	return res, res.Err
}

// executable resolves the tool's toolchain, rendering a build failure.
func (e *Engine) executable(ctx context.Context, tool Tool) (string, *Result) {
	path, err := e.opts.Toolchains.Executable(ctx, tool.Info().Toolchain)
	if err == nil {
		return path, nil
	}
	msg := err.Error()
	var be *toolchain.BuildError
	if errors.As(err, &be) {
		msg = be.Message
	}
	return "", &Result{
		Output: fmt.Sprintf("Error: Failed to compile %s: %s", tool.Title(), msg),
		Err:    err,
	}
}

// runTool runs a toolchain executable with stdin under the tool timeout.
// A launch failure or timeout is rendered into a Result.
func (e *Engine) runTool(ctx context.Context, tool Tool, exe, stdin string) (process.Result, *Result) {
	req := process.Request{Path: exe, Stdin: stdin, Timeout: e.opts.ToolTimeout}
	res := e.opts.Runner.Run(ctx, req)
	switch res.Status {
	case process.TimedOut:
		return res, &Result{
			Output: fmt.Sprintf("Error: %s execution timed out.", tool.Title()),
			Err:    res.Err(req),
		}
	case process.LaunchFailed:
		return res, &Result{
			Output: fmt.Sprintf("Error: %s executable not found. Did compilation fail?", tool.Title()),
			Err:    res.Err(req),
		}
	case process.Canceled:
		return res, &Result{
			Output: fmt.Sprintf("Error: %s execution was canceled.", tool.Title()),
			Err:    res.Err(req),
		}
	}
	return res, nil
}

func (e *Engine) calculator(p Payload) Result {
	var lines []string
	for _, a := range arith.Assignments(interp.StripComments(p.Input)) {
		switch {
		case a.Err == nil:
			lines = append(lines, "Result: "+a.Value.String())
		case errors.Is(a.Err, arith.ErrInvalidCharacters):
			lines = append(lines, fmt.Sprintf("Result for %s: Error - Invalid characters in expression: %s", a.Name, a.Expr))
		case errors.Is(a.Err, arith.ErrDivisionByZero):
			lines = append(lines, fmt.Sprintf("Result for %s: Error - Division by zero in expression: %s", a.Name, a.Expr))
		default:
			lines = append(lines, fmt.Sprintf("Result for %s: Error - Could not evaluate '%s': %v", a.Name, a.Expr, a.Err))
		}
	}
	if len(lines) == 0 {
		return Result{Output: "No arithmetic assignments found."}
	}
	return Result{Output: strings.Join(lines, "\n")}
}

func (e *Engine) arithmeticCalculator(ctx context.Context, p Payload) Result {
	exe, fail := e.executable(ctx, ArithmeticCalculator)
	if fail != nil {
		return *fail
	}
	input := strings.TrimSpace(p.Input)
	if input == "" {
		return Result{Output: "No arithmetic expressions found in the input."}
	}

	run, fail := e.runTool(ctx, ArithmeticCalculator, exe, input+"\n")
	if fail != nil {
		return *fail
	}

	out := run.Stdout
	if run.Stderr != "" {
		var parseErrs []string
		for _, line := range strings.Split(run.Stderr, "\n") {
			if strings.Contains(line, "syntax error") && !strings.Contains(line, "memory exhausted") {
				parseErrs = append(parseErrs, line)
			}
		}
		if len(parseErrs) > 0 {
			out += "\nParser Errors:\n" + strings.Join(parseErrs, "\n")
		}
	}
	if run.ExitCode != 0 && run.Stderr == "" {
		out += fmt.Sprintf("\nProgram exited with non-zero code: %d (no specific error message from stderr).", run.ExitCode)
	}
	return Result{Output: out}
}

// passthrough runs a recognizer whose stdout is the answer and whose
// stderr, when present, replaces it.
func (e *Engine) passthrough(ctx context.Context, tool Tool, p Payload) Result {
	exe, fail := e.executable(ctx, tool)
	if fail != nil {
		return *fail
	}
	run, fail := e.runTool(ctx, tool, exe, p.Input)
	if fail != nil {
		return *fail
	}
	if run.Stderr != "" {
		return Result{Output: fmt.Sprintf("%s Error:\n%s", tool.Title(), run.Stderr)}
	}
	return Result{Output: run.Stdout}
}

var printfText = regexp.MustCompile(`(?s)printf\s*\(\s*"(.*?)"\s*\);?`)

// booleanInput turns C-ish text into one expression per line: printf
// strings are unwrapped and program boilerplate is dropped.
func booleanInput(src string) string {
	var b strings.Builder
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if m := printfText.FindStringSubmatch(line); m != nil {
			if expr := strings.TrimSpace(m[1]); expr != "" {
				b.WriteString(expr)
				b.WriteByte('\n')
			}
			continue
		}
		if line == "" || isBoilerplate(line) {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func isBoilerplate(line string) bool {
	for _, prefix := range []string{"//", "#", "int main", "return 0", "{", "}"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func (e *Engine) booleanEvaluator(ctx context.Context, p Payload) Result {
	exe, fail := e.executable(ctx, BooleanExpressionEvaluator)
	if fail != nil {
		return *fail
	}
	input := booleanInput(p.Input)
	if strings.TrimSpace(input) == "" {
		return Result{Output: "No valid boolean expressions found or parsed from the input."}
	}
	run, fail := e.runTool(ctx, BooleanExpressionEvaluator, exe, input)
	if fail != nil {
		return *fail
	}
	return Result{Output: run.Stdout}
}

func (e *Engine) reverseConcatenate(ctx context.Context, p Payload) Result {
	exe, fail := e.executable(ctx, ReverseConcatenate)
	if fail != nil {
		return *fail
	}
	run, fail := e.runTool(ctx, ReverseConcatenate, exe, p.Input)
	if fail != nil {
		return *fail
	}
	if run.Stderr != "" {
		return Result{Output: "C Code Parser Error:\n" + run.Stderr}
	}

	rep, err := extractReport(run.Stdout)
	if err != nil {
		return Result{Output: "Error: Failed to parse analysis data from C code parser.\nRaw output:\n" + run.Stdout}
	}
	if len(rep.PrintOrder) == 0 {
		return Result{Output: "No printf statements with recognized variables found."}
	}

	parts := make([]string, len(rep.PrintOrder))
	reversed := make([]string, len(rep.PrintOrder))
	for i, name := range rep.PrintOrder {
		v, ok := rep.Variables[name]
		if ok {
			parts[i] = cast.ToString(v)
		} else {
			parts[i] = "<" + name + "?>"
		}
		reversed[i] = reverse(parts[i])
	}
	final := strings.Join(reversed, "")
	palindrome := "No"
	if final == reverse(final) {
		palindrome = "Yes"
	}

	return Result{Output: strings.Join([]string{
		"- Original printed output: " + strings.Join(parts, ""),
		"- Reversed output (before concatenation): " + strings.Join(reversed, ", "),
		"- Final concatenated reversed string: " + final,
		fmt.Sprintf("- Total characters: %d", len([]rune(final))),
		"- Is the final string a palindrome? " + palindrome,
	}, "\n")}
}

func executableName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func (e *Engine) classifyDiagnostic(p Payload) Result {
	rec := e.opts.Classifier.ClassifyText(p.Input)
	return Result{Output: rec.String(), Record: &rec}
}

const (
	reportRule    = "--------------------------------------------------------------------------------"
	reportDivider = "--------------------------"
)

// runFullCCode compiles and runs a submitted program in a fresh workspace
// and renders a sectioned report.
func (e *Engine) runFullCCode(ctx context.Context, p Payload) Result {
	lines := []string{
		"SECURITY WARNING: Running arbitrary C code can be dangerous.",
		"This feature is for educational/testing purposes only. Do not run untrusted code.",
		reportRule,
	}
	var (
		res Result
		dir string
	)

	err := e.opts.Workspaces.With(p.Input, "user_code.c", func(ws *workspace.Workspace) error {
		dir = ws.Dir
		exe := ws.Path(executableName("user_code"))

		compile := process.Request{
			Path:    e.opts.CCompiler,
			Args:    []string{ws.SourcePath, "-o", exe},
			Dir:     ws.Dir,
			Timeout: e.opts.CompileTimeout,
		}
		lines = append(lines, "Compiling with: "+compile.CommandLine())
		cres := e.opts.Runner.Run(ctx, compile)

		switch {
		case cres.Status == process.LaunchFailed:
			lines = append(lines, "\n--- ERROR ---",
				fmt.Sprintf("Error: %s compiler not found. Please ensure it is installed and in your system's PATH.", e.opts.CCompiler),
				reportDivider)
			res.Err = cres.Err(compile)
			return nil
		case cres.Status == process.TimedOut:
			lines = append(lines, "\n--- COMPILATION FAILED ---",
				fmt.Sprintf("Error: Compilation timed out after %s.", e.opts.CompileTimeout),
				reportDivider)
			res.Err = cres.Err(compile)
			return nil
		case cres.Status == process.Canceled:
			res.Err = cres.Err(compile)
			return res.Err
		case !cres.OK():
			rec := e.opts.Classifier.Classify(p.Input, cres.Stderr)
			res.Record = &rec
			lines = append(lines, "\n--- COMPILATION FAILED ---", cres.Stderr, reportDivider,
				"\n--- DIAGNOSIS ---", rec.String(), reportDivider)
			return nil
		}

		lines = append(lines, "\n--- COMPILATION SUCCESSFUL ---")
		if cres.Stderr != "" {
			lines = append(lines, "Compiler Warnings/Info:", cres.Stderr, reportDivider)
		}

		run := process.Request{Path: exe, Stdin: p.Stdin, Dir: ws.Dir, Timeout: e.opts.RunTimeout}
		lines = append(lines, "\nExecuting: "+run.CommandLine())
		rres := e.opts.Runner.Run(ctx, run)
		switch rres.Status {
		case process.TimedOut:
			lines = append(lines, "\n--- EXECUTION FAILED ---",
				fmt.Sprintf("Error: Program timed out after %s.", e.opts.RunTimeout),
				reportDivider)
			res.Err = rres.Err(run)
		case process.LaunchFailed:
			lines = append(lines, "\n--- EXECUTION FAILED ---",
				fmt.Sprintf("Error during execution: %v", rres.Cause),
				reportDivider)
			res.Err = rres.Err(run)
		case process.Canceled:
			res.Err = rres.Err(run)
			return res.Err
		default:
			lines = append(lines, "\n--- PROGRAM OUTPUT ---", rres.Stdout)
			if rres.Stderr != "" {
				lines = append(lines, "--- PROGRAM STDERR ---", rres.Stderr)
			}
			lines = append(lines, fmt.Sprintf("--- Program exited with code: %d ---", rres.ExitCode))
		}
		return nil
	})

	if err != nil && !errors.Is(err, process.ErrCanceled) {
		lines = append(lines, "\n--- UNEXPECTED ERROR ---",
			fmt.Sprintf("An unexpected error occurred: %v", err),
			reportDivider)
		if res.Err == nil {
			res.Err = err
		}
	}
	if dir != "" {
		lines = append(lines, "\nCleaned up temporary files in "+dir)
	}
	lines = append(lines, reportRule)

	res.Output = strings.Join(lines, "\n")
	return res
}
