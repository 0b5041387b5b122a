// Package distdir validates the configured output directory for built
// packages.
package distdir

import (
	"fmt"
	"path/filepath"
)

// DistDir is the validated root directory all built artifacts are written
// under.
type DistDir struct {
	// Path is the cleaned directory path as configured, relative to the
	// process working directory unless absolute.
	Path string
}

// New validates and normalizes the configured dist directory. Writing to a
// filesystem root would make the clear-paths step catastrophic, so that is
// rejected outright.
func New(path string) (DistDir, error) {
	if path == "" {
		return DistDir{}, fmt.Errorf("dist directory cannot be empty")
	}
	cleaned := filepath.Clean(path)
	if filepath.Dir(cleaned) == cleaned && filepath.IsAbs(cleaned) {
		return DistDir{}, fmt.Errorf("dist directory cannot be a filesystem root: %q", path)
	}
	return DistDir{Path: cleaned}, nil
}
