// Package config holds the Config struct the CLI populates from flags and
// optionally seeds from a project .chunkgrep.kdl file.
package config

import "github.com/chunkgrep/chunkgrep/internal/extract"

// Config is the merged view of CLI flags and an optional .chunkgrep.kdl
// file. A flag explicitly passed on the command line always wins over a
// file-supplied value; an absent flag leaves the file's value in place.
type Config struct {
	Targets     []extract.Target
	Model       string
	Format      string
	Include     []string
	Exclude     []string
	NoGitignore bool
}

// Merge overlays file-supplied defaults under cfg's already-populated
// flag values, field by field. cfg is mutated in place and returned for
// chaining.
func (cfg *Config) Merge(fileDefaults *Config) *Config {
	if fileDefaults == nil {
		return cfg
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = fileDefaults.Targets
	}
	if cfg.Model == "" {
		cfg.Model = fileDefaults.Model
	}
	if cfg.Format == "" {
		cfg.Format = fileDefaults.Format
	}
	if len(cfg.Include) == 0 {
		cfg.Include = fileDefaults.Include
	}
	if len(cfg.Exclude) == 0 {
		cfg.Exclude = fileDefaults.Exclude
	}
	if !cfg.NoGitignore {
		cfg.NoGitignore = fileDefaults.NoGitignore
	}
	return cfg
}
