package watch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T, roots ...string) *Watcher {
	t.Helper()
	w, err := NewWatcher(roots...)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.Debounce = 50 * time.Millisecond
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(w.Stop)
	return w
}

func TestWatcherEmitsBatch(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	path := filepath.Join(dir, "oak_planks.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case batch := <-w.Rebuilds:
		if !reflect.DeepEqual(batch.Files, []string{path}) {
			t.Errorf("Files = %v, want %v", batch.Files, []string{path})
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
}

func TestWatcherCoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.png")
	if err := os.WriteFile(a, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(b, []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case batch := <-w.Rebuilds:
		if !reflect.DeepEqual(batch.Files, []string{a, b}) {
			t.Errorf("Files = %v, want both writes in one batch", batch.Files)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batch")
	}

	select {
	case batch := <-w.Rebuilds:
		t.Errorf("unexpected second batch: %+v", batch)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "notes.bak"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case batch := <-w.Rebuilds:
		t.Errorf("unexpected batch for unrelated file: %+v", batch)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	sub := filepath.Join(dir, "mineable")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// The new directory itself triggers a rebuild.
	select {
	case <-w.Rebuilds:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for directory batch")
	}

	// Files created under it are seen too.
	path := filepath.Join(sub, "axe.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case batch := <-w.Rebuilds:
		if !reflect.DeepEqual(batch.Files, []string{path}) {
			t.Errorf("Files = %v, want %v", batch.Files, []string{path})
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for nested file batch")
	}
}

func TestWatcherSkipsMissingRoots(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir, filepath.Join(dir, "does-not-exist"))

	path := filepath.Join(dir, "stone.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-w.Rebuilds:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
}

func TestIsAssetFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"blockstates/stone.json", true},
		{"textures/block/stone.PNG", true},
		{"blocklist.txt", true},
		{"rules.toml", true},
		{"stone.json.swp", false},
		{"README.md", false},
		{"textures", false},
	}
	for _, tt := range tests {
		if got := isAssetFile(tt.name); got != tt.want {
			t.Errorf("isAssetFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
