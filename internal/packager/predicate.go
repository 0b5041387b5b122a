package packager

import (
	"github.com/vk/distgridgo/internal/address"
	"github.com/vk/distgridgo/internal/config"
	"github.com/vk/distgridgo/internal/graph"
	"github.com/vk/distgridgo/internal/registry"
)

// TraverseIfNotPackageTarget returns the traversal policy the packaging
// orchestrator uses when collecting a package's contents.
//
// Roots are always expanded (when alwaysTraverseRoots is set, the default):
// the package being built composes all of its direct declared contents even
// if the root is itself packageable by another capability. Any other target
// reached during traversal that is itself packageable stops the walk there;
// its dependencies belong to that nested package, and absorbing them would
// silently duplicate another artifact's private contents. Special-cased
// edges are never followed.
func TraverseIfNotPackageTarget(reg *registry.Registry, roots []address.Address, alwaysTraverseRoots bool) graph.TraversalPredicate {
	rootSet := make(map[string]bool, len(roots))
	for _, r := range roots {
		rootSet[r.String()] = true
	}

	return func(t *config.Target, edge graph.EdgeKind) bool {
		if edge == graph.SpecialCasedEdge {
			return false
		}
		if alwaysTraverseRoots && rootSet[t.Address.String()] {
			return true
		}
		if reg.IsPackageable(t) {
			// Do not traverse past a nested package target.
			return false
		}
		return true
	}
}
