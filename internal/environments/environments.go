// Package environments resolves the execution environment a package target
// builds in and carries the resolved environment through context.Context,
// mirroring how the logger travels via ctxlog.
package environments

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/distgridgo/internal/config"
)

// FieldName is the target field a package target uses to select its
// environment.
const FieldName = "environment"

// DefaultName is the environment used when a target selects none.
const DefaultName = "local"

// key is an unexported context key type.
type key struct{}

var envKey = key{}

// WithEnvironment returns a new context carrying the resolved environment.
func WithEnvironment(ctx context.Context, env *config.Environment) context.Context {
	return context.WithValue(ctx, envKey, env)
}

// FromContext extracts the environment established by the dispatcher. The
// second return is false when no environment has been resolved, which only
// happens outside a dispatched build.
func FromContext(ctx context.Context) (*config.Environment, bool) {
	env, ok := ctx.Value(envKey).(*config.Environment)
	return env, ok
}

// Resolver looks up the environment a target selects.
type Resolver struct {
	environments map[string]*config.Environment
}

// NewResolver creates a Resolver over the model's declared environments.
func NewResolver(model *config.Model) *Resolver {
	return &Resolver{environments: model.Environments}
}

// Resolve returns the environment named by the target's "environment"
// field, falling back to the default. An unknown name is an error reported
// before any build is attempted.
func (r *Resolver) Resolve(t *config.Target) (*config.Environment, error) {
	name, ok := t.StringField(FieldName)
	if !ok {
		name = DefaultName
	}
	env, known := r.environments[name]
	if !known {
		return nil, fmt.Errorf("target %q selects unknown environment %q", t.Address.String(), name)
	}
	return env, nil
}

// Arch extracts the architecture half of an environment's "os/arch"
// platform string. It returns an empty string when the platform has no
// architecture component.
func Arch(env *config.Environment) string {
	if env == nil {
		return ""
	}
	_, arch, found := strings.Cut(env.Platform, "/")
	if !found {
		return ""
	}
	return arch
}

// OS extracts the operating system half of an environment's platform.
func OS(env *config.Environment) string {
	if env == nil {
		return ""
	}
	osName, _, _ := strings.Cut(env.Platform, "/")
	return osName
}
