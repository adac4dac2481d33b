package workdir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireCreatesIsolatedDirectories(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	a, err := m.Acquire("job-a")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	b, err := m.Acquire("job-b")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}

	if a.Root() == b.Root() {
		t.Fatal("jobs must not share a directory")
	}
	for _, d := range []*Dir{a, b} {
		if _, err := os.Stat(d.Root()); err != nil {
			t.Fatalf("stat %s: %v", d.Root(), err)
		}
	}
}

func TestAllocateScenesCreatesDistinctSubPaths(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	d, _ := m.Acquire("job")

	if err := d.AllocateScenes(3); err != nil {
		t.Fatalf("AllocateScenes returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		info, err := os.Stat(d.ScenePath(i))
		if err != nil || !info.IsDir() {
			t.Fatalf("scene dir %d missing: %v", i, err)
		}
	}
	if d.ScenePath(0) == d.ScenePath(1) {
		t.Fatal("scene paths must be distinct")
	}
	if got := d.ScenePath(1, "clip.mp4"); filepath.Base(got) != "clip.mp4" {
		t.Fatalf("ScenePath join = %q", got)
	}
}

func TestCleanupRemovesEverything(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	d, _ := m.Acquire("job")
	_ = d.AllocateScenes(2)
	if err := os.WriteFile(d.ScenePath(0, "image.png"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := d.Cleanup(); err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if _, err := os.Stat(d.Root()); !os.IsNotExist(err) {
		t.Fatalf("directory still exists after cleanup: %v", err)
	}

	// Cleanup is idempotent.
	if err := d.Cleanup(); err != nil {
		t.Fatalf("second Cleanup returned error: %v", err)
	}
}
