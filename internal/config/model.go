package config

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/distgridgo/internal/address"
)

// Model is the unified, format-agnostic representation of an entire
// packaging grid: every declared target plus the build environments.
type Model struct {
	// Targets holds every target in declaration order: manifest files are
	// visited in lexical walk order and blocks in file order, so the slice
	// order is stable across runs.
	Targets []*Target
	// Environments maps environment name to its definition. Always contains
	// the implicit "local" environment.
	Environments map[string]*Environment
}

// Target is the format-agnostic representation of one `target` block. It is
// immutable after loading.
type Target struct {
	// Address uniquely identifies the target within the grid.
	Address address.Address
	// Type is the target block's type label, e.g. "content_file" or
	// "deb_package". Capabilities match on it.
	Type string
	// Fields holds the target's typed attribute values. Values are fully
	// evaluated at load time; only literal expressions are permitted.
	Fields map[string]cty.Value
	// DependsOn lists ordinary dependency edges, in declaration order.
	DependsOn []address.Address
	// Refs lists special-cased dependency edges: cross-references resolved
	// by name that are never composed into the referencing package.
	Refs []address.Address
}

// Environment is a named build environment a package target may select via
// its "environment" field.
type Environment struct {
	Name string
	// Platform is an "os/arch" pair, e.g. "linux/amd64".
	Platform string
}

// HasField reports whether the target declares a non-null value for name.
func (t *Target) HasField(name string) bool {
	v, ok := t.Fields[name]
	return ok && !v.IsNull()
}

// StringField returns the named field as a string. The second return is
// false when the field is absent, null, or not convertible to a string.
func (t *Target) StringField(name string) (string, bool) {
	v, ok := t.Fields[name]
	if !ok || v.IsNull() {
		return "", false
	}
	converted, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", false
	}
	return converted.AsString(), true
}

// IntField returns the named field as an int64.
func (t *Target) IntField(name string) (int64, bool) {
	v, ok := t.Fields[name]
	if !ok || v.IsNull() {
		return 0, false
	}
	var out int64
	if err := gocty.FromCtyValue(v, &out); err != nil {
		return 0, false
	}
	return out, true
}

// BoolField returns the named field as a bool.
func (t *Target) BoolField(name string) (bool, bool) {
	v, ok := t.Fields[name]
	if !ok || v.IsNull() {
		return false, false
	}
	var out bool
	if err := gocty.FromCtyValue(v, &out); err != nil {
		return false, false
	}
	return out, true
}

// Index is an address-keyed view over a model's targets.
type Index struct {
	byAddress map[string]*Target
	ordered   []*Target
}

// NewIndex builds an Index from the given targets. A duplicate address is a
// manifest authoring error and is rejected here, before anything downstream
// can observe two targets with the same identity.
func NewIndex(targets []*Target) (*Index, error) {
	idx := &Index{
		byAddress: make(map[string]*Target, len(targets)),
		ordered:   targets,
	}
	for _, t := range targets {
		key := t.Address.String()
		if _, exists := idx.byAddress[key]; exists {
			return nil, fmt.Errorf("duplicate target address %q", key)
		}
		idx.byAddress[key] = t
	}
	return idx, nil
}

// Lookup returns the target with the given address, if any.
func (idx *Index) Lookup(addr address.Address) (*Target, bool) {
	t, ok := idx.byAddress[addr.String()]
	return t, ok
}

// Targets returns every indexed target in declaration order.
func (idx *Index) Targets() []*Target {
	return idx.ordered
}
