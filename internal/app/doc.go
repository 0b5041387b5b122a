// Package app wires a distgridgo instance together: it configures the
// logger, loads the grid into the agnostic model, registers the packaging
// capability modules, validates the registry against the model, and runs
// the packaging orchestrator.
package app
