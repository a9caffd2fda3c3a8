//go:build unix

package process

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestRun_TimeoutKillsProcessTree(t *testing.T) {
	sh := requireShell(t)
	pidFile := filepath.Join(t.TempDir(), "child.pid")

	// The background sleep is a grandchild of Run; it must die with the group.
	script := "sleep 30 & echo $! > " + pidFile + "; wait"
	req := Request{Path: sh, Args: []string{"-c", script}, Timeout: 300 * time.Millisecond}
	res := New().Run(context.Background(), req)

	if res.Status != TimedOut {
		t.Fatalf("Status = %v, want %v", res.Status, TimedOut)
	}
	if alive(res.Pid) {
		t.Errorf("leader %d still alive after timeout", res.Pid)
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("ReadFile(pid) error = %v", err)
	}
	child, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("bad pid file %q", data)
	}

	deadline := time.Now().Add(2 * time.Second)
	for alive(child) && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if alive(child) {
		t.Errorf("grandchild %d still alive after timeout", child)
	}
}

func TestRun_BackgroundChildKeepsLeaderStatus(t *testing.T) {
	sh := requireShell(t)

	// The background sleep inherits stdout and outlives the shell.
	req := Request{Path: sh, Args: []string{"-c", "sleep 30 & echo hi"}, Timeout: 10 * time.Second}
	res := New(WithWaitDelay(100*time.Millisecond)).Run(context.Background(), req)

	if res.Status != Completed {
		t.Fatalf("Status = %v, want %v", res.Status, Completed)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Stdout != "hi\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hi\n")
	}
	if res.Cause != nil {
		t.Errorf("Cause = %v, want nil", res.Cause)
	}
	if err := res.Err(req); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

// alive reports whether pid exists and is not a zombie awaiting reaping.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	if errors.Is(err, syscall.ESRCH) {
		return false
	}
	stat, readErr := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if readErr != nil {
		return err == nil
	}
	// Field 3 is the state; Z marks a zombie.
	if i := strings.LastIndexByte(string(stat), ')'); i >= 0 && i+2 < len(stat) {
		return stat[i+2] != 'Z'
	}
	return true
}
