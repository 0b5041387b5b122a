// Package archive packages a target's dependency closure into a plain
// archive file (tar.gz or zip).
//
// It is the second backend behind the packaging capability interface and
// deliberately shares nothing with the nfpm module beyond the content
// aggregation: the same closure and content declarations feed two unrelated
// package formats. Archives are built deterministically — entries are
// ordered by destination path and carry fixed timestamps — so the same
// inputs always produce byte-identical output.
package archive

import (
	"github.com/vk/distgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the archive capability.
func (Module) Register(r *registry.Registry) {
	r.RegisterCapability(&Capability{})
}
