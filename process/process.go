package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Status is the terminal state of a process run.
type Status uint8

const (
	// Completed means the process ran to exit, with any exit code.
	Completed Status = iota
	// TimedOut means the wall-clock bound elapsed and the process tree was killed.
	TimedOut
	// LaunchFailed means the executable could not be located or started.
	LaunchFailed
	// Canceled means the caller's context ended before the process exited.
	Canceled
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed_out"
	case LaunchFailed:
		return "launch_failed"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Request describes a single program execution.
type Request struct {
	// Path is the executable to run. Bare names are resolved through PATH.
	Path string

	// Args are passed after the program name.
	Args []string

	// Stdin is fed to the process, fully buffered.
	Stdin string

	// Dir is the working directory. Empty means the caller's directory.
	Dir string

	// Env entries are appended to the inherited environment.
	Env []string

	// Timeout bounds wall-clock time. Zero uses the runner default.
	Timeout time.Duration
}

// CommandLine renders the request as a shell-like string for display.
func (r Request) CommandLine() string {
	return strings.Join(append([]string{r.Path}, r.Args...), " ")
}

// Result is the outcome of a run. It is immutable once returned.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Status   Status
	Duration time.Duration

	// Pid is the process id, or zero when the process never started.
	Pid int

	// Truncated is set when either stream exceeded the output cap.
	Truncated bool

	// Cause is the OS error behind LaunchFailed or Canceled.
	Cause error
}

// OK reports whether the process completed with exit code zero.
func (r Result) OK() bool {
	return r.Status == Completed && r.ExitCode == 0
}

// Runner executes external programs.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Run never returns a Go error; failures are reported in Result.Status.
// - Cleanup: when Run returns, no process started by it is alive and all pipes are closed.
type Runner interface {
	Run(ctx context.Context, req Request) Result
}

// Exec is the os/exec backed Runner.
type Exec struct {
	opts options
}

var _ Runner = (*Exec)(nil)

// New creates an Exec runner.
func New(opts ...Option) *Exec {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Exec{opts: o}
}

// Run executes req. Output captured before a timeout or cancellation is discarded.
func (e *Exec) Run(ctx context.Context, req Request) Result {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.opts.timeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, req.Path, req.Args...)
	cmd.Dir = req.Dir
	if len(req.Env) > 0 {
		cmd.Env = append(os.Environ(), req.Env...)
	}
	cmd.Stdin = strings.NewReader(req.Stdin)

	stdout := &cappedBuffer{limit: e.opts.maxOutput}
	stderr := &cappedBuffer{limit: e.opts.maxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = e.opts.waitDelay
	setProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{
			ExitCode: -1,
			Status:   LaunchFailed,
			Duration: time.Since(start),
			Cause:    err,
		}
	}
	pid := cmd.Process.Pid

	waitErr := cmd.Wait()
	duration := time.Since(start)

	// Children may outlive the leader; reap the whole group on every path.
	killProcessGroup(pid)

	if waitErr != nil && runCtx.Err() != nil {
		res := Result{ExitCode: -1, Duration: duration, Pid: pid}
		if ctx.Err() != nil {
			res.Status = Canceled
			res.Cause = ctx.Err()
		} else {
			res.Status = TimedOut
			res.Cause = context.DeadlineExceeded
		}
		return res
	}

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: 0,
		Status:   Completed,
		Duration: duration,
		Pid:      pid,

		Truncated: stdout.truncated || stderr.truncated,
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		case errors.Is(waitErr, exec.ErrWaitDelay) && cmd.ProcessState != nil:
			// The leader exited but a descendant kept the pipes open past
			// WaitDelay. The leader's own status still stands.
			res.ExitCode = cmd.ProcessState.ExitCode()
		default:
			// I/O failure after start: the run is unusable.
			res.ExitCode = -1
			res.Cause = waitErr
		}
	}
	return res
}

// cappedBuffer keeps at most limit bytes and silently drops the rest so a
// chatty child never blocks on a full pipe.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.limit <= 0 {
		return b.buf.Write(p)
	}
	room := b.limit - b.buf.Len()
	if room <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
