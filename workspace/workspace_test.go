package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestWith_WritesSourceAndCleansUp(t *testing.T) {
	mgr := New(Config{Root: t.TempDir()})

	var dir string
	err := mgr.With("int main(void) { return 0; }\n", "user_code.c", func(ws *Workspace) error {
		dir = ws.Dir
		data, err := os.ReadFile(ws.SourcePath)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if !strings.Contains(string(data), "int main") {
			t.Errorf("source = %q", data)
		}
		if got := filepath.Base(ws.SourcePath); got != "user_code.c" {
			t.Errorf("SourcePath base = %q, want %q", got, "user_code.c")
		}
		if !strings.HasPrefix(filepath.Base(ws.Dir), "user_code-") {
			t.Errorf("Dir = %q, want user_code- prefix", ws.Dir)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("workspace %s still exists after With()", dir)
	}
}

func TestWith_CleansUpOnError(t *testing.T) {
	mgr := New(Config{Root: t.TempDir()})
	boom := errors.New("compile failed")

	var dir string
	err := mgr.With("x", "a.c", func(ws *Workspace) error {
		dir = ws.Dir
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("With() error = %v, want %v", err, boom)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("workspace %s still exists after failing callback", dir)
	}
}

func TestWith_CleansUpOnPanic(t *testing.T) {
	mgr := New(Config{Root: t.TempDir()})

	var dir string
	func() {
		defer func() { _ = recover() }()
		_ = mgr.With("x", "a.c", func(ws *Workspace) error {
			dir = ws.Dir
			panic("unexpected fault")
		})
	}()
	if dir == "" {
		t.Fatal("callback was not invoked")
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("workspace %s still exists after panic", dir)
	}
}

func TestWith_InvalidFileName(t *testing.T) {
	mgr := New(Config{Root: t.TempDir()})

	tests := []string{"", ".", "..", "../escape.c", "dir/file.c"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			called := false
			err := mgr.With("x", name, func(*Workspace) error {
				called = true
				return nil
			})
			if !errors.Is(err, ErrInvalidFileName) {
				t.Errorf("With(%q) error = %v, want ErrInvalidFileName", name, err)
			}
			if called {
				t.Error("callback should not run for an invalid file name")
			}
		})
	}
}

func TestWith_NilFunc(t *testing.T) {
	if err := New(Config{}).With("x", "a.c", nil); !errors.Is(err, ErrNilFunc) {
		t.Errorf("With(nil) error = %v, want ErrNilFunc", err)
	}
}

func TestWith_ConcurrentCallsGetDistinctDirs(t *testing.T) {
	mgr := New(Config{Root: t.TempDir(), Prefix: "job"})

	const n = 16
	dirs := make(chan string, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.With("x", "a.c", func(ws *Workspace) error {
				dirs <- ws.Dir
				return nil
			})
			if err != nil {
				t.Errorf("With() error = %v", err)
			}
		}()
	}
	wg.Wait()
	close(dirs)

	seen := make(map[string]bool)
	for d := range dirs {
		if seen[d] {
			t.Errorf("directory %s handed out twice", d)
		}
		seen[d] = true
		if !strings.HasPrefix(filepath.Base(d), "job-") {
			t.Errorf("Dir = %q, want job- prefix", d)
		}
	}
	if len(seen) != n {
		t.Errorf("got %d distinct dirs, want %d", len(seen), n)
	}
}
