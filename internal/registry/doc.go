// Package registry provides the central "glue" for the packaging capability
// system.
//
// A capability is one packaging backend (a deb package, an archive bundle,
// ...) that declares which targets it can build via an applicability
// predicate and implements the build operation itself. The Registry stores
// every registered capability and answers the resolution queries the
// orchestrator needs: which capabilities apply to a target, which targets in
// a grid are packageable at all, and the field sets to build for a set of
// requested roots.
//
// Capabilities register during application startup through the Module
// interface; a name collision is a programmer error and panics, so a
// miswired binary fails before any target is read.
package registry
