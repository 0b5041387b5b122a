// Package schema declares the HCL block structures accepted in grid
// manifests. These structs are format-specific; the hcl package translates
// them into the agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// Target represents a `target` block from a grid manifest. The two labels
// are the target type (which capabilities match on) and the instance name.
// All remaining attributes are the target's typed fields.
type Target struct {
	Type      string   `hcl:"type,label"`
	Name      string   `hcl:"name,label"`
	DependsOn []string `hcl:"depends_on,optional"`
	Refs      []string `hcl:"refs,optional"`
	Fields    hcl.Body `hcl:",remain"`
}

// Environment represents an `environment` block: a named execution
// environment that package targets may select.
type Environment struct {
	Name     string `hcl:"name,label"`
	Platform string `hcl:"platform"`
}

// GridFile represents the top-level structure of one grid manifest.
type GridFile struct {
	Targets      []*Target      `hcl:"target,block"`
	Environments []*Environment `hcl:"environment,block"`
	Body         hcl.Body       `hcl:",remain"`
}
