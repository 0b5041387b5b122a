// Package address defines the canonical identifier for build targets.
//
// An address pairs the spec path (the manifest file's directory relative to
// the grid root) with the target's declared name. The canonical string form
// is "spec/path:name"; a target declared at the grid root renders as
// ":name". Inside a manifest, a bare "name" or ":name" dependency entry is
// shorthand for a target in the same spec path and is resolved with
// ResolveIn before it enters the model.
package address
