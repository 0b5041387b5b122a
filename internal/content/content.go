// Package content classifies dependency targets into the normalized content
// entries a packaging backend composes its output from.
//
// A content-bearing target declares one of three shapes through field
// presence: a directory (dir_dst), a symlink (symlink_src/symlink_dst), or a
// file (src/dst). The shapes are mutually exclusive and checked in that
// order. A target that claims a shape but omits a required path field is
// silently skipped: it is treated as not yet configured, not as an error.
package content

import (
	"io/fs"
	"sort"
	"strconv"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/distgridgo/internal/config"
	"github.com/vk/distgridgo/internal/graph"
)

// Kind is the shape of one content entry.
type Kind string

const (
	KindFile    Kind = "file"
	KindDir     Kind = "dir"
	KindSymlink Kind = "symlink"
)

// Field names content-bearing targets use.
const (
	FieldDirDst     = "dir_dst"
	FieldSymlinkSrc = "symlink_src"
	FieldSymlinkDst = "symlink_dst"
	FieldSrc        = "src"
	FieldDst        = "dst"
	FieldOwner      = "file_owner"
	FieldGroup      = "file_group"
	FieldMode       = "file_mode"
	FieldMtime      = "file_mtime"
)

// Entry is the normalized description of one packaged artifact element.
type Entry struct {
	Kind Kind
	// Src is the source path for file and symlink entries, relative to the
	// grid root (for files) or the packaged filesystem (for symlinks).
	Src string
	// Dst is the destination path inside the package. Always set.
	Dst string
	// Owner and Group are empty when the declaring target leaves them to
	// the backend's defaults.
	Owner string
	Group string
	// Mode holds explicit permission bits; zero means the backend default.
	Mode fs.FileMode
	// Mtime is the declared modification time (RFC 3339), empty if unset.
	Mtime string
}

// FromTarget classifies one target. The second return is false when the
// target carries no content shape at all, or claims one with a required
// path field missing.
func FromTarget(t *config.Target) (Entry, bool) {
	switch {
	case t.HasField(FieldDirDst):
		dst, ok := t.StringField(FieldDirDst)
		if !ok {
			return Entry{}, false
		}
		return withFileInfo(t, Entry{Kind: KindDir, Dst: dst}), true

	case t.HasField(FieldSymlinkDst) || t.HasField(FieldSymlinkSrc):
		src, srcOK := t.StringField(FieldSymlinkSrc)
		dst, dstOK := t.StringField(FieldSymlinkDst)
		if !srcOK || !dstOK {
			return Entry{}, false
		}
		return withFileInfo(t, Entry{Kind: KindSymlink, Src: src, Dst: dst}), true

	case t.HasField(FieldDst) || t.HasField(FieldSrc):
		src, srcOK := t.StringField(FieldSrc)
		dst, dstOK := t.StringField(FieldDst)
		if !srcOK || !dstOK {
			return Entry{}, false
		}
		return withFileInfo(t, Entry{Kind: KindFile, Src: src, Dst: dst}), true
	}
	return Entry{}, false
}

// withFileInfo copies the optional ownership and timestamp fields onto an
// already-classified entry.
func withFileInfo(t *config.Target, e Entry) Entry {
	if owner, ok := t.StringField(FieldOwner); ok {
		e.Owner = owner
	}
	if group, ok := t.StringField(FieldGroup); ok {
		e.Group = group
	}
	if mode, ok := modeField(t); ok {
		e.Mode = mode
	}
	if mtime, ok := t.StringField(FieldMtime); ok {
		e.Mtime = mtime
	}
	return e
}

// modeField reads the permission bits from a target. A string value is an
// octal literal ("0644"); a numeric value carries the bits directly (644
// octal is written 420 in decimal). The string form is what manifests
// should use.
func modeField(t *config.Target) (fs.FileMode, bool) {
	v, ok := t.Fields[FieldMode]
	if !ok || v.IsNull() {
		return 0, false
	}
	if v.Type() == cty.String {
		bits, err := strconv.ParseUint(v.AsString(), 8, 32)
		if err != nil {
			return 0, false
		}
		return fs.FileMode(bits), true
	}
	if n, ok := t.IntField(FieldMode); ok {
		return fs.FileMode(n), true
	}
	return 0, false
}

// Collect folds the closure into its content entries: every target is
// classified, incomplete declarations are skipped, and the result is sorted
// by destination path so the emitted order never depends on traversal or
// declaration order.
func Collect(closure *graph.Closure) []Entry {
	var entries []Entry
	for _, t := range closure.All() {
		if entry, ok := FromTarget(t); ok {
			entries = append(entries, entry)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Dst < entries[j].Dst
	})
	return entries
}
