package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/distgridgo/internal/config"
)

// Module is the interface packaging capability plugins implement to be
// registered into an application instance.
type Module interface {
	Register(r *Registry)
}

// Capability is one packaging backend. IsApplicable is the capability's
// applicability predicate over a target's type and declared fields; Build
// performs the packaging operation for one field set.
type Capability interface {
	// Name identifies the capability in logs and registration checks.
	Name() string
	// IsApplicable reports whether this capability can package the target.
	IsApplicable(t *config.Target) bool
	// Build packages one field set. It runs concurrently with other builds
	// of the same invocation and must not observe their state.
	Build(ctx context.Context, req BuildRequest) (*BuiltPackage, error)
}

// FieldSetValidator is an optional Capability extension. Capabilities that
// implement it get their applicable targets checked during startup, before
// any build is dispatched.
type FieldSetValidator interface {
	ValidateTarget(ctx context.Context, t *config.Target, conv config.Converter) error
}

// Registry holds all registered packaging capabilities for a single
// application instance.
type Registry struct {
	capabilities []Capability
	byName       map[string]Capability
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		byName: make(map[string]Capability),
	}
}

// RegisterCapability adds a capability to the registry. Registering two
// capabilities with the same name is a programmer error.
func (r *Registry) RegisterCapability(c Capability) {
	if _, exists := r.byName[c.Name()]; exists {
		panic(fmt.Sprintf("packaging capability with name '%s' already registered", c.Name()))
	}
	slog.Debug("Registering packaging capability.", "name", c.Name())
	r.byName[c.Name()] = c
	r.capabilities = append(r.capabilities, c)
}

// Capabilities returns every registered capability in registration order.
func (r *Registry) Capabilities() []Capability {
	return r.capabilities
}

// Validate runs every capability's optional field-set validation against
// each target it claims, surfacing manifest authoring errors at startup
// instead of mid-build.
func (r *Registry) Validate(ctx context.Context, model *config.Model, conv config.Converter) error {
	for _, t := range model.Targets {
		for _, c := range r.capabilities {
			if !c.IsApplicable(t) {
				continue
			}
			validator, ok := c.(FieldSetValidator)
			if !ok {
				continue
			}
			if err := validator.ValidateTarget(ctx, t, conv); err != nil {
				return fmt.Errorf("capability %q rejects target %q: %w", c.Name(), t.Address.String(), err)
			}
		}
	}
	return nil
}
