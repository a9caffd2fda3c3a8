package toolchain

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/jonwraymond/toolforge/process"
)

// fakeRunner records requests and answers from a per-tool script.
type fakeRunner struct {
	mu       sync.Mutex
	requests []process.Request
	results  map[string]process.Result
}

func (r *fakeRunner) Run(ctx context.Context, req process.Request) process.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if res, ok := r.results[req.Path]; ok {
		return res
	}
	return process.Result{Status: process.Completed}
}

func (r *fakeRunner) tools() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.requests))
	for i, req := range r.requests {
		out[i] = req.Path
	}
	return out
}

func TestGeneratorBuilder_Steps(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	b := &GeneratorBuilder{Runner: runner}

	spec := Spec{
		Name:    "calc",
		Dir:     dir,
		Lexer:   "calc.l",
		Grammar: "calc.y",
		Sources: []string{"support.c"},
		Flags:   []string{"-lm"},
	}
	path, err := b.Build(context.Background(), spec)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if want := filepath.Join(dir, executableName("calc")); path != want {
		t.Errorf("Build() = %q, want %q", path, want)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("Build() path %q is not absolute", path)
	}

	if got, want := runner.tools(), []string{"bison", "flex", "g++"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("steps = %v, want %v", got, want)
	}

	reqs := runner.requests
	if got, want := reqs[0].Args, []string{"-d", "-o", "calc.tab.c", filepath.Join(dir, "calc.y")}; !reflect.DeepEqual(got, want) {
		t.Errorf("bison args = %v, want %v", got, want)
	}
	if got, want := reqs[1].Args, []string{"-o", "calc.lex.yy.c", filepath.Join(dir, "calc.l")}; !reflect.DeepEqual(got, want) {
		t.Errorf("flex args = %v, want %v", got, want)
	}
	wantCompile := []string{"calc.tab.c", "calc.lex.yy.c", filepath.Join(dir, "support.c"), "-lm", "-o", executableName("calc")}
	if !reflect.DeepEqual(reqs[2].Args, wantCompile) {
		t.Errorf("compile args = %v, want %v", reqs[2].Args, wantCompile)
	}
	for _, req := range reqs {
		if req.Dir != dir {
			t.Errorf("%s ran in %q, want %q", req.Path, req.Dir, dir)
		}
		if req.Timeout != DefaultStepTimeout {
			t.Errorf("%s timeout = %v, want %v", req.Path, req.Timeout, DefaultStepTimeout)
		}
	}
}

func TestGeneratorBuilder_PlainC(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	b := &GeneratorBuilder{Runner: runner, CCompiler: "cc"}

	if _, err := b.Build(context.Background(), Spec{Name: "bool", Dir: dir, Sources: []string{"bool.c"}}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := runner.tools(); !reflect.DeepEqual(got, []string{"cc"}) {
		t.Errorf("steps = %v, want [cc]", got)
	}
}

func TestGeneratorBuilder_OutputDir(t *testing.T) {
	dir := t.TempDir()
	b := &GeneratorBuilder{Runner: &fakeRunner{}}

	path, err := b.Build(context.Background(), Spec{Name: "calc", Dir: dir, Lexer: "calc.l", OutputDir: "build"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if want := filepath.Join(dir, "build", executableName("calc")); path != want {
		t.Errorf("Build() = %q, want %q", path, want)
	}
}

func TestGeneratorBuilder_SharedDirKeepsOutputsApart(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	b := &GeneratorBuilder{Runner: runner}

	for _, name := range []string{"calc", "bool"} {
		spec := Spec{Name: name, Dir: dir, Lexer: name + ".l", Grammar: name + ".y"}
		if _, err := b.Build(context.Background(), spec); err != nil {
			t.Fatalf("Build(%s) error = %v", name, err)
		}
	}

	// Every file a step writes into the shared directory must be unique.
	written := map[string]string{}
	for _, req := range runner.requests {
		for i, arg := range req.Args {
			if arg != "-o" || i+1 >= len(req.Args) {
				continue
			}
			out := req.Args[i+1]
			if prev, ok := written[out]; ok {
				t.Errorf("%s and %s both write %q", prev, req.Path, out)
			}
			written[out] = req.Path
		}
	}
	if len(written) != 6 {
		t.Errorf("outputs = %v, want 6 distinct files", written)
	}
}

func TestGeneratorBuilder_StepFailures(t *testing.T) {
	tests := []struct {
		name      string
		results   map[string]process.Result
		wantStep  string
		wantMsg   string
		wantCause error
		wantSteps int
	}{
		{
			name: "grammar stderr verbatim",
			results: map[string]process.Result{
				"bison": {Status: process.Completed, ExitCode: 1, Stderr: "calc.y:4.1: syntax error\n"},
			},
			wantStep:  StepGrammar,
			wantMsg:   "calc.y:4.1: syntax error\n",
			wantCause: process.ErrRuntime,
			wantSteps: 1,
		},
		{
			name: "lexer missing",
			results: map[string]process.Result{
				"flex": {Status: process.LaunchFailed, ExitCode: -1, Cause: errors.New("executable file not found in $PATH")},
			},
			wantStep:  StepLexer,
			wantMsg:   "Compiler not found: flex",
			wantCause: process.ErrLaunch,
			wantSteps: 2,
		},
		{
			name: "compiler timeout",
			results: map[string]process.Result{
				"g++": {Status: process.TimedOut, ExitCode: -1},
			},
			wantStep:  StepCompile,
			wantMsg:   "g++ timed out",
			wantCause: process.ErrTimeout,
			wantSteps: 3,
		},
		{
			name: "nonzero exit without stderr",
			results: map[string]process.Result{
				"g++": {Status: process.Completed, ExitCode: 2},
			},
			wantStep:  StepCompile,
			wantMsg:   "g++ exited with code 2",
			wantCause: process.ErrRuntime,
			wantSteps: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{results: tt.results}
			b := &GeneratorBuilder{Runner: runner}

			_, err := b.Build(context.Background(), Spec{Name: "calc", Dir: t.TempDir(), Lexer: "calc.l", Grammar: "calc.y"})
			var be *BuildError
			if !errors.As(err, &be) {
				t.Fatalf("Build() error = %v, want *BuildError", err)
			}
			if be.Step != tt.wantStep {
				t.Errorf("Step = %q, want %q", be.Step, tt.wantStep)
			}
			if !strings.HasPrefix(be.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want prefix %q", be.Message, tt.wantMsg)
			}
			if !errors.Is(err, ErrBuild) || !errors.Is(err, tt.wantCause) {
				t.Errorf("error %v does not match ErrBuild and %v", err, tt.wantCause)
			}
			if n := len(runner.tools()); n != tt.wantSteps {
				t.Errorf("ran %d steps, want %d", n, tt.wantSteps)
			}
		})
	}
}

func TestGeneratorBuilder_NoRunner(t *testing.T) {
	_, err := (&GeneratorBuilder{}).Build(context.Background(), Spec{Name: "calc", Lexer: "calc.l"})
	if !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("Build() error = %v, want ErrInvalidSpec", err)
	}
}

func TestBuildError_Format(t *testing.T) {
	err := &BuildError{Toolchain: "calc", Step: StepLexer, Message: "bad rule"}
	if got, want := err.Error(), "calc lexer step failed:\nbad rule"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
