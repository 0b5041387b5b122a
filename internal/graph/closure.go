package graph

import (
	"fmt"

	"github.com/vk/distgridgo/internal/address"
	"github.com/vk/distgridgo/internal/config"
)

// EdgeKind distinguishes the two kinds of dependency edge a target declares.
type EdgeKind int

const (
	// DependenciesEdge is an ordinary build-composition edge (depends_on).
	DependenciesEdge EdgeKind = iota
	// SpecialCasedEdge is a by-name cross-reference (refs). These exist for
	// lookup, not composition, and no shipped policy ever follows them.
	SpecialCasedEdge
)

// TraversalPredicate is evaluated when the walker is about to expand a
// target's edges of one kind. Returning false leaves the target itself in
// the closure but stops exploration of those edges from this target.
type TraversalPredicate func(t *config.Target, edge EdgeKind) bool

// TraverseEverything follows every ordinary edge and, like every shipped
// policy, never follows special-cased edges.
func TraverseEverything(t *config.Target, edge EdgeKind) bool {
	return edge == DependenciesEdge
}

// Closure is the result of a transitive traversal: the requested roots and
// the dependency targets reached under the predicate, each exactly once.
type Closure struct {
	// Roots holds the requested root targets in request order, deduplicated.
	Roots []*config.Target
	// Dependencies holds every non-root target reached, in breadth-first
	// declaration order.
	Dependencies []*config.Target
}

// All returns roots followed by dependencies.
func (c *Closure) All() []*config.Target {
	all := make([]*config.Target, 0, len(c.Roots)+len(c.Dependencies))
	all = append(all, c.Roots...)
	all = append(all, c.Dependencies...)
	return all
}

// TransitiveTargets walks the dependency graph from the given roots,
// consulting the predicate at every expansion. Unknown addresses on a
// traversed edge are an error; roots are always included exactly once, even
// when one root depends on another.
func TransitiveTargets(idx *config.Index, roots []address.Address, pred TraversalPredicate) (*Closure, error) {
	closure := &Closure{}
	visited := make(map[string]bool, len(roots))

	var queue []*config.Target
	for _, rootAddr := range roots {
		t, ok := idx.Lookup(rootAddr)
		if !ok {
			return nil, fmt.Errorf("unknown root target %q", rootAddr.String())
		}
		if visited[rootAddr.String()] {
			continue
		}
		visited[rootAddr.String()] = true
		closure.Roots = append(closure.Roots, t)
		queue = append(queue, t)
	}

	edges := func(t *config.Target, kind EdgeKind) []address.Address {
		if kind == SpecialCasedEdge {
			return t.Refs
		}
		return t.DependsOn
	}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		for _, kind := range []EdgeKind{DependenciesEdge, SpecialCasedEdge} {
			if !pred(t, kind) {
				continue
			}
			for _, depAddr := range edges(t, kind) {
				if visited[depAddr.String()] {
					continue
				}
				dep, ok := idx.Lookup(depAddr)
				if !ok {
					return nil, fmt.Errorf("target %q depends on unknown target %q",
						t.Address.String(), depAddr.String())
				}
				visited[depAddr.String()] = true
				closure.Dependencies = append(closure.Dependencies, dep)
				queue = append(queue, dep)
			}
		}
	}

	return closure, nil
}
