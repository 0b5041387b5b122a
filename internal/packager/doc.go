// Package packager orchestrates the whole packaging operation: it resolves
// the requested roots to field sets, computes each field set's dependency
// closure under the nested-package traversal policy, dispatches every build
// concurrently in its resolved environment, and merges and writes the
// results into the dist directory.
//
// The phases are strictly ordered. Resolution, environment lookup, and
// closure computation run first and sequentially, so authoring errors
// surface before any build starts. Builds then fan out concurrently and
// independently; the first failure cancels the rest and nothing is written.
// Only after every build has succeeded does the single merge-and-write pass
// touch the dist directory.
package packager
