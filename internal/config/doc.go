// Package config defines the format-agnostic model of a packaging grid:
// the declared targets, their typed fields and dependency edges, and the
// build environments. It also defines the Loader and Converter interfaces
// that bridge a concrete manifest format (HCL today) to this model.
//
// The model is the single source of truth for the registry, graph, and
// packager packages. Targets are immutable once loaded; nothing downstream
// mutates them, which is what makes lock-free concurrent dispatch safe.
package config
