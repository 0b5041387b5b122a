package fsdigest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/distgridgo/internal/ctxlog"
)

// Workspace writes merged snapshots into a destination directory. It is the
// only component that mutates the output tree, and it does so exactly once
// per invocation, after every build has completed.
type Workspace struct {
	root string
}

// NewWorkspace creates a Workspace rooted at the given directory. The
// directory is created on the first write, not here.
func NewWorkspace(root string) *Workspace {
	return &Workspace{root: root}
}

// Root returns the workspace's destination directory.
func (w *Workspace) Root() string {
	return w.root
}

// WriteDigest writes every file of the digest under root/prefix. Before
// writing, each clear path is removed; callers pass the invocation's own
// declared artifact paths so a previous run's stale content at those paths
// is replaced wholesale, while paths outside the declared set are never
// touched.
func (w *Workspace) WriteDigest(ctx context.Context, d *Digest, prefix string, clearPaths []string) error {
	logger := ctxlog.FromContext(ctx)
	base := filepath.Join(w.root, filepath.FromSlash(prefix))

	for _, p := range clearPaths {
		cleaned, err := normalizePath(p)
		if err != nil {
			return fmt.Errorf("invalid clear path: %w", err)
		}
		abs := filepath.Join(base, filepath.FromSlash(cleaned))
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("failed to clear stale output at %s: %w", abs, err)
		}
		logger.Debug("Cleared output path.", "path", abs)
	}

	for _, f := range d.Files() {
		abs := filepath.Join(base, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(abs, f.Content, f.Mode); err != nil {
			return fmt.Errorf("failed to write output file %s: %w", f.Path, err)
		}
	}
	logger.Debug("Snapshot written.", "root", base, "file_count", d.Len())

	return nil
}
