// Package fsdigest provides content-addressed, in-memory file snapshots for
// packaging builds.
//
// Each capability build produces a Digest: an immutable, deterministically
// ordered set of relative paths with content and permission bits, identified
// by a SHA-256 over the whole set. Digests from independent builds are
// merged with hard conflict detection (the same path with different content
// is an error, never a silent pick), and the merged result is written to the
// dist directory in a single pass by a Workspace.
package fsdigest
