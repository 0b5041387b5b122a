package registry

import (
	"path"
	"strings"

	"github.com/vk/distgridgo/internal/config"
	"github.com/vk/distgridgo/internal/fsdigest"
	"github.com/vk/distgridgo/internal/graph"
)

// BuiltPackageArtifact describes one artifact of a built package, used for
// logging what was dumped into the dist directory.
type BuiltPackageArtifact struct {
	// Relpath is the artifact's path relative to the dist directory. Empty
	// for synthetic, log-only artifacts that produce no on-disk file.
	Relpath string
	// ExtraLogLines are backend-supplied informational lines, logged after
	// the artifact's path.
	ExtraLogLines []string
}

// BuiltPackage is the immutable result of one packaging operation.
type BuiltPackage struct {
	Digest    *fsdigest.Digest
	Artifacts []BuiltPackageArtifact
}

// BuildRequest carries everything a capability needs to package one field
// set. The closure and converter are shared read-only; builds must not
// mutate them.
type BuildRequest struct {
	// FieldSet is the capability descriptor being built.
	FieldSet FieldSet
	// Closure is the field set target's dependency closure, computed under
	// the orchestrator's traversal policy.
	Closure *graph.Closure
	// SourceRoot is the directory source paths in content declarations are
	// resolved against (the grid root).
	SourceRoot string
	// Converter decodes target fields into the capability's field structs.
	Converter config.Converter
}

// OutputPathFieldName is the optional target field overriding where a built
// artifact lands inside the dist directory.
const OutputPathFieldName = "output_path"

// OutputPath returns the target's declared output path, or the default:
// the spec path with separators dotted, then the target name plus the
// optional file ending. For example docs/tools:app with ending "tar.gz"
// becomes "docs.tools/app.tar.gz".
func OutputPath(t *config.Target, fileEnding string) string {
	if v, ok := t.StringField(OutputPathFieldName); ok {
		return v
	}
	fileName := t.Address.Name
	if fileEnding != "" {
		fileName += "." + fileEnding
	}
	dir := strings.ReplaceAll(t.Address.SpecPath, "/", ".")
	if dir == "" {
		return fileName
	}
	return path.Join(dir, fileName)
}
