package fsdigest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// DefaultFileMode is applied to files whose snapshot entry carries no
// explicit permission bits.
const DefaultFileMode fs.FileMode = 0o644

// File is one entry in a snapshot: a relative path with content and
// permission bits.
type File struct {
	// Path is the slash-separated path relative to the snapshot root.
	Path string
	// Content is the full file content.
	Content []byte
	// Mode holds the permission bits. Zero means DefaultFileMode.
	Mode fs.FileMode
}

// Digest is an immutable, content-addressed file snapshot. The zero value
// is the empty snapshot.
type Digest struct {
	files  []File
	hashes map[string]string // path -> content hash
}

// hashContent computes the hex-encoded SHA-256 of the given bytes.
func hashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// normalizePath validates and cleans a snapshot-relative path.
func normalizePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("snapshot path cannot be empty")
	}
	cleaned := path.Clean(p)
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("snapshot path %q escapes the snapshot root", p)
	}
	if cleaned == "." {
		return "", fmt.Errorf("snapshot path %q does not name a file", p)
	}
	return cleaned, nil
}

// FromFiles builds a Digest from the given files. Paths are normalized and
// the result is ordered by path, so the digest is independent of input
// order. Two entries for the same path are rejected unless their content is
// identical.
func FromFiles(files []File) (*Digest, error) {
	d := &Digest{hashes: make(map[string]string, len(files))}
	byPath := make(map[string]File, len(files))

	for _, f := range files {
		cleaned, err := normalizePath(f.Path)
		if err != nil {
			return nil, err
		}
		h := hashContent(f.Content)
		if existing, ok := d.hashes[cleaned]; ok {
			if existing != h {
				return nil, fmt.Errorf("path conflict: %q added twice with different content", cleaned)
			}
			continue
		}
		mode := f.Mode
		if mode == 0 {
			mode = DefaultFileMode
		}
		d.hashes[cleaned] = h
		byPath[cleaned] = File{Path: cleaned, Content: f.Content, Mode: mode}
	}

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	d.files = make([]File, 0, len(paths))
	for _, p := range paths {
		d.files = append(d.files, byPath[p])
	}
	return d, nil
}

// Merge combines many digests into one. The same path appearing in more
// than one digest is a hard conflict unless the content hashes match.
func Merge(digests ...*Digest) (*Digest, error) {
	var all []File
	seen := make(map[string]string)
	for _, d := range digests {
		if d == nil {
			continue
		}
		for _, f := range d.files {
			if existing, ok := seen[f.Path]; ok {
				if existing != d.hashes[f.Path] {
					return nil, fmt.Errorf("path conflict: %q is produced by more than one package with different content", f.Path)
				}
				continue
			}
			seen[f.Path] = d.hashes[f.Path]
			all = append(all, f)
		}
	}
	return FromFiles(all)
}

// Files returns the snapshot entries ordered by path. The returned slice
// must not be mutated.
func (d *Digest) Files() []File {
	if d == nil {
		return nil
	}
	return d.files
}

// Len returns the number of files in the snapshot.
func (d *Digest) Len() int {
	if d == nil {
		return 0
	}
	return len(d.files)
}

// Hash returns the hex-encoded SHA-256 identifying the whole snapshot:
// a hash over every path and content hash in sorted order.
func (d *Digest) Hash() string {
	hasher := sha256.New()
	if d != nil {
		for _, f := range d.files {
			fmt.Fprintf(hasher, "%s\x00%s\x00%o\n", f.Path, d.hashes[f.Path], f.Mode)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
