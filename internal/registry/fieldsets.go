package registry

import (
	"github.com/vk/distgridgo/internal/address"
	"github.com/vk/distgridgo/internal/config"
)

// FieldSet pairs one target with one capability that claims it. A target
// claimed by several capabilities yields several field sets, each built
// independently downstream.
type FieldSet struct {
	Capability Capability
	Target     *config.Target
}

// Address returns the address of the field set's target.
func (fs FieldSet) Address() address.Address {
	return fs.Target.Address
}

// FieldSetsPerTarget returns one field set per capability whose
// applicability predicate claims the target, in registration order. An
// empty result means the target is not packageable.
func (r *Registry) FieldSetsPerTarget(t *config.Target) []FieldSet {
	var fieldSets []FieldSet
	for _, c := range r.capabilities {
		if c.IsApplicable(t) {
			fieldSets = append(fieldSets, FieldSet{Capability: c, Target: t})
		}
	}
	return fieldSets
}

// IsPackageable reports whether any registered capability claims the target.
func (r *Registry) IsPackageable(t *config.Target) bool {
	for _, c := range r.capabilities {
		if c.IsApplicable(t) {
			return true
		}
	}
	return false
}

// AllPackageableTargets filters the given targets down to those at least one
// capability claims, preserving input order so build logs stay reproducible.
func (r *Registry) AllPackageableTargets(targets []*config.Target) []*config.Target {
	var packageable []*config.Target
	for _, t := range targets {
		if r.IsPackageable(t) {
			packageable = append(packageable, t)
		}
	}
	return packageable
}

// TargetRootsToFieldSets resolves the requested roots to the full list of
// field sets to build, in input order. Roots no capability claims
// contribute nothing; the caller decides how to report them.
func (r *Registry) TargetRootsToFieldSets(roots []*config.Target) []FieldSet {
	var fieldSets []FieldSet
	for _, t := range roots {
		fieldSets = append(fieldSets, r.FieldSetsPerTarget(t)...)
	}
	return fieldSets
}
