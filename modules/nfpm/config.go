package nfpm

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/vk/distgridgo/internal/content"
)

// generatorComment is the fixed first line of every generated document.
const generatorComment = "# Generated by distgridgo"

// Defaults applied to content entries that leave file info unset.
const (
	defaultOwner = "root"
	defaultGroup = "root"

	defaultFileMode    fs.FileMode = 0o644
	defaultDirMode     fs.FileMode = 0o755
	defaultSymlinkMode fs.FileMode = 0o777
)

// renderConfig serializes the package configuration as YAML, prefixed with
// the generator comment. The document is built as an explicit node tree:
// key order is fixed, and permission modes are emitted as leading-zero
// octal literals (nFPM parses modes in that convention) without touching
// any global serializer state.
func renderConfig(fields packageFields, entries []content.Entry) ([]byte, error) {
	root := mappingNode()
	addPair(root, "name", strNode(fields.PackageName))
	addPair(root, "arch", strNode(fields.Arch))
	addPair(root, "platform", strNode(fields.Platform))
	addPair(root, "version", strNode(fields.Version))
	if fields.Maintainer != "" {
		addPair(root, "maintainer", strNode(fields.Maintainer))
	}
	if fields.Description != "" {
		addPair(root, "description", strNode(fields.Description))
	}

	contents := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, entry := range entries {
		contents.Content = append(contents.Content, contentNode(entry))
	}
	addPair(root, "contents", contents)

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, err
	}
	return append([]byte(generatorComment+"\n"), out...), nil
}

// contentNode renders one content entry.
func contentNode(entry content.Entry) *yaml.Node {
	node := mappingNode()
	addPair(node, "type", strNode(string(entry.Kind)))
	addPair(node, "dst", strNode(entry.Dst))
	if entry.Kind != content.KindDir {
		addPair(node, "src", strNode(entry.Src))
	}

	owner, group := entry.Owner, entry.Group
	if owner == "" {
		owner = defaultOwner
	}
	if group == "" {
		group = defaultGroup
	}
	mode := entry.Mode
	if mode == 0 {
		switch entry.Kind {
		case content.KindDir:
			mode = defaultDirMode
		case content.KindSymlink:
			mode = defaultSymlinkMode
		default:
			mode = defaultFileMode
		}
	}

	fileInfo := mappingNode()
	addPair(fileInfo, "owner", strNode(owner))
	addPair(fileInfo, "group", strNode(group))
	addPair(fileInfo, "mode", octalNode(mode))
	if entry.Mtime != "" {
		addPair(fileInfo, "mtime", strNode(entry.Mtime))
	}
	addPair(node, "file_info", fileInfo)

	return node
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// octalNode renders permission bits as a leading-zero octal integer
// literal, e.g. 0644 rather than 420.
func octalNode(mode fs.FileMode) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!int",
		Value: fmt.Sprintf("%#o", uint32(mode.Perm())),
	}
}

func addPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, strNode(key), value)
}
