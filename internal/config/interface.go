package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific grid loader.
type Loader interface {
	// Load reads every manifest under the given grid path, translates the
	// contents into the format-agnostic model, and returns a matching
	// Converter for downstream field decoding.
	Load(ctx context.Context, gridPath string) (*Model, Converter, error)
}

// Converter is the interface for a format-specific data binding
// implementation. It bridges a target's raw typed field values to the Go
// structs that packaging capabilities consume.
type Converter interface {
	// DecodeFields populates the exported, tagged fields of fieldSetStruct
	// (a non-nil struct pointer) from the given field values. Fields tagged
	// ",optional" keep their zero value when absent; all other tagged
	// fields are required.
	DecodeFields(ctx context.Context, fieldSetStruct any, fields map[string]cty.Value) error
}
