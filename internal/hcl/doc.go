// Package hcl implements the config.Loader and config.Converter interfaces
// for HCL grid manifests.
//
// The loader discovers every .hcl file under the grid path, decodes the
// blocks declared in the schema package, evaluates each target's field
// attributes to concrete cty values, and assembles the format-agnostic
// config.Model. Target addresses are derived from each manifest's directory
// relative to the grid root, so the same target tree always produces the
// same addresses no matter where the grid root lives on disk.
package hcl
