package process

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestRun_CapturesOutput(t *testing.T) {
	sh := requireShell(t)
	r := New()

	req := Request{
		Path:    sh,
		Args:    []string{"-c", "read line; echo \"got $line\"; echo oops >&2; exit 3"},
		Stdin:   "hello\n",
		Timeout: 5 * time.Second,
	}
	res := r.Run(context.Background(), req)

	if res.Status != Completed {
		t.Fatalf("Status = %v, want %v", res.Status, Completed)
	}
	if res.Stdout != "got hello\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "got hello\n")
	}
	if strings.TrimSpace(res.Stderr) != "oops" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "oops\n")
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}

	err := res.Err(req)
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) || !errors.Is(err, ErrRuntime) {
		t.Fatalf("Err() = %v, want *RuntimeError", err)
	}
	if rtErr.ExitCode != 3 {
		t.Errorf("RuntimeError.ExitCode = %d, want 3", rtErr.ExitCode)
	}
}

func TestRun_Success(t *testing.T) {
	sh := requireShell(t)
	req := Request{Path: sh, Args: []string{"-c", "cat"}, Stdin: "abc"}
	res := New().Run(context.Background(), req)

	if !res.OK() {
		t.Fatalf("OK() = false, result = %+v", res)
	}
	if res.Stdout != "abc" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "abc")
	}
	if err := res.Err(req); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestRun_LaunchFailed(t *testing.T) {
	req := Request{Path: "/nonexistent/definitely-not-a-binary"}
	res := New().Run(context.Background(), req)

	if res.Status != LaunchFailed {
		t.Fatalf("Status = %v, want %v", res.Status, LaunchFailed)
	}
	if res.Cause == nil {
		t.Error("Cause should carry the OS error")
	}
	if res.Pid != 0 {
		t.Errorf("Pid = %d, want 0", res.Pid)
	}
	if err := res.Err(req); !errors.Is(err, ErrLaunch) {
		t.Errorf("Err() = %v, want ErrLaunch", err)
	}
}

func TestRun_TimeoutDiscardsOutput(t *testing.T) {
	sh := requireShell(t)
	req := Request{
		Path:    sh,
		Args:    []string{"-c", "echo partial; sleep 30"},
		Timeout: 200 * time.Millisecond,
	}

	start := time.Now()
	res := New().Run(context.Background(), req)
	elapsed := time.Since(start)

	if res.Status != TimedOut {
		t.Fatalf("Status = %v, want %v", res.Status, TimedOut)
	}
	if res.Stdout != "" || res.Stderr != "" {
		t.Errorf("output should be discarded on timeout, got stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Run took %v, expected the timeout to cut it short", elapsed)
	}
	if err := res.Err(req); !errors.Is(err, ErrTimeout) {
		t.Errorf("Err() = %v, want ErrTimeout", err)
	}
}

func TestRun_Canceled(t *testing.T) {
	sh := requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	req := Request{Path: sh, Args: []string{"-c", "sleep 30"}, Timeout: 10 * time.Second}
	res := New().Run(ctx, req)

	if res.Status != Canceled {
		t.Fatalf("Status = %v, want %v", res.Status, Canceled)
	}
	if err := res.Err(req); !errors.Is(err, ErrCanceled) {
		t.Errorf("Err() = %v, want ErrCanceled", err)
	}
}

func TestRun_MaxOutput(t *testing.T) {
	sh := requireShell(t)
	req := Request{Path: sh, Args: []string{"-c", "printf 0123456789"}}
	res := New(WithMaxOutput(4)).Run(context.Background(), req)

	if res.Stdout != "0123" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "0123")
	}
	if !res.Truncated {
		t.Error("Truncated = false, want true")
	}
}

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Completed, "completed"},
		{TimedOut, "timed_out"},
		{LaunchFailed, "launch_failed"},
		{Canceled, "canceled"},
		{Status(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
