package workspace_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"warble/internal/logging"
	"warble/internal/workspace"
)

func TestAcquireCreatesUniqueDirectories(t *testing.T) {
	base := t.TempDir()
	mgr, err := workspace.NewManager(base, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	const n = 20
	var mu sync.Mutex
	paths := make(map[string]struct{}, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws, err := mgr.Acquire()
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			mu.Lock()
			paths[ws.Path()] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(paths) != n {
		t.Fatalf("expected %d distinct workspaces, got %d", n, len(paths))
	}
	for path := range paths {
		if !strings.HasPrefix(filepath.Base(path), workspace.Prefix) {
			t.Fatalf("workspace missing prefix: %q", path)
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			t.Fatalf("workspace not a directory: %q (%v)", path, err)
		}
	}
}

func TestReleaseRemovesTreeAndIsIdempotent(t *testing.T) {
	base := t.TempDir()
	mgr, err := workspace.NewManager(base, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ws, err := mgr.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := os.WriteFile(filepath.Join(ws.Path(), "abc.mp3"), []byte("audio"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	ws.Release()
	if _, err := os.Stat(ws.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected workspace removed, stat err: %v", err)
	}

	// Second release is a no-op, not a panic or an error.
	ws.Release()
}

func TestNewManagerRejectsMissingBase(t *testing.T) {
	if _, err := workspace.NewManager(filepath.Join(t.TempDir(), "nope"), logging.NewNop()); err == nil {
		t.Fatal("expected error for missing base")
	}
}
