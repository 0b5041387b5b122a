// Package nfpm packages targets as system packages via a generated nFPM
// configuration.
//
// One capability is registered per supported packager (deb, rpm, apk,
// archlinux); each claims targets whose type is "<packager>_package". The
// build aggregates the target's dependency closure into content entries,
// renders an nfpm.yaml describing the package, and stages the file contents
// next to it. Actually encoding the binary package format is nFPM's job,
// not ours.
package nfpm

import (
	"github.com/vk/distgridgo/internal/registry"
)

// Packagers lists every package format this module registers a capability
// for.
var Packagers = []string{"deb", "rpm", "apk", "archlinux"}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers one packaging capability per supported packager.
func (Module) Register(r *registry.Registry) {
	for _, packager := range Packagers {
		r.RegisterCapability(&Capability{packager: packager})
	}
}
