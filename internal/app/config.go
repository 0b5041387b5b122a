package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string // grid manifest file or directory of .hcl files
	DistDir  string // destination directory for built artifacts
	Targets  []string // requested target addresses; empty means all packageable

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.DistDir == "" {
		return nil, errors.New("DistDir is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
