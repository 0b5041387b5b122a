// Package graph computes transitive dependency closures over the target
// model.
//
// The walker itself is policy-free: a traversal predicate, passed in as a
// plain function value, decides at every expansion step whether a target's
// edges of a given kind are followed. The packager package constructs the
// policy the packaging orchestrator uses; tests and future callers can pass
// their own. A visited set guarantees termination even on cyclic input, and
// the breadth-first expansion in declaration order makes the closure order
// deterministic for any fixed model.
package graph
