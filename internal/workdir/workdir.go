// Package workdir manages the ephemeral, job-scoped scratch area every
// pipeline stage reads from and writes into. A directory is acquired at job
// start and removed unconditionally when the job finishes; no intermediate
// artifact outlives the job.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manager allocates per-job directories under a common base path.
type Manager struct {
	base string
}

// NewManager ensures the base path exists and returns a manager rooted there.
func NewManager(base string) (*Manager, error) {
	if base == "" {
		return nil, fmt.Errorf("workdir: base path is required")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("workdir: ensure base path: %w", err)
	}
	return &Manager{base: base}, nil
}

// Acquire creates an isolated directory for the given job. Jobs never share a
// namespace, so no locking is needed between concurrent jobs.
func (m *Manager) Acquire(jobID string) (*Dir, error) {
	root := filepath.Join(m.base, "videogen-"+jobID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("workdir: acquire %s: %w", jobID, err)
	}
	return &Dir{root: root}, nil
}

// Dir is one job's scratch directory.
type Dir struct {
	root string
}

// Root returns the directory's absolute path.
func (d *Dir) Root() string {
	return d.root
}

// Path joins parts under the directory root.
func (d *Dir) Path(parts ...string) string {
	return filepath.Join(append([]string{d.root}, parts...)...)
}

// AllocateScenes pre-creates one sub-directory per scene so concurrently
// rendered scenes write to distinct paths.
func (d *Dir) AllocateScenes(n int) error {
	for i := 0; i < n; i++ {
		if err := os.MkdirAll(d.ScenePath(i), 0o755); err != nil {
			return fmt.Errorf("workdir: allocate scene %d: %w", i, err)
		}
	}
	return nil
}

// ScenePath returns the sub-directory for scene i, optionally joined with a
// file name.
func (d *Dir) ScenePath(i int, parts ...string) string {
	return filepath.Join(append([]string{d.root, fmt.Sprintf("scene-%03d", i)}, parts...)...)
}

// Cleanup removes the directory and everything beneath it. It is safe to call
// on every exit path, success or failure.
func (d *Dir) Cleanup() error {
	if d == nil || d.root == "" {
		return nil
	}
	if err := os.RemoveAll(d.root); err != nil {
		return fmt.Errorf("workdir: cleanup %s: %w", d.root, err)
	}
	return nil
}
