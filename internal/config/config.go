// Package config loads the engine's configuration surface (spec.md
// §6): size/timeout limits, import depth, cache sizing, and resource
// lookup policy. Grounded in the teacher pack's server-config idiom
// (dekarrin-tunaq/server/config.go): a plain struct, a FillDefaults
// method, and a Validate method, rather than a framework like viper.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Cache holds the C9 sizing/TTL knobs for every namespace. Enabled is
// a pointer so FillDefaults can tell "unset" (default: on) apart from
// an explicit "enabled: false" in the loaded YAML.
type Cache struct {
	Enabled    *bool `yaml:"enabled"`
	MaxSize    int   `yaml:"maxSize"`
	TTLSeconds int   `yaml:"ttlSeconds"`
}

// IsEnabled reports whether caching is on, treating an unset Enabled
// as the default (on).
func (c Cache) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Resources governs the file-system lookup passed to the import
// resolver (spec.md §6 "resources.*").
type Resources struct {
	AllowedPaths  []string `yaml:"allowedPaths"`
	AutoDiscovery bool     `yaml:"autoDiscovery"`
}

// Config is the full recognized configuration surface (spec.md §6
// "Configuration surface"). Zero values mean "unset"; call
// FillDefaults before using a Config loaded from a partial file.
type Config struct {
	MaxGrammarSizeMb          int       `yaml:"maxGrammarSizeMb"`
	MaxInputSizeMb            int       `yaml:"maxInputSizeMb"`
	CompilationTimeoutSeconds int       `yaml:"compilationTimeoutSeconds"`
	ParseTimeoutSeconds       int       `yaml:"parseTimeoutSeconds"`
	MaxImportDepth            int       `yaml:"maxImportDepth"`
	Cache                     Cache     `yaml:"cache"`
	Resources                 Resources `yaml:"resources"`
}

// FillDefaults returns a copy of cfg with every unset field set to the
// default spec.md §6 documents.
func (cfg Config) FillDefaults() Config {
	out := cfg
	if out.MaxGrammarSizeMb == 0 {
		out.MaxGrammarSizeMb = 10
	}
	if out.MaxInputSizeMb == 0 {
		out.MaxInputSizeMb = 1
	}
	if out.CompilationTimeoutSeconds == 0 {
		out.CompilationTimeoutSeconds = 30
	}
	if out.ParseTimeoutSeconds == 0 {
		out.ParseTimeoutSeconds = 5
	}
	if out.MaxImportDepth == 0 {
		out.MaxImportDepth = 10
	}
	if out.Cache.MaxSize == 0 {
		out.Cache.MaxSize = 256
	}
	if out.Cache.TTLSeconds == 0 {
		out.Cache.TTLSeconds = 600
	}
	if out.Cache.Enabled == nil {
		enabled := true
		out.Cache.Enabled = &enabled
	}
	return out
}

// Validate rejects configurations with nonsensical field values.
func (cfg Config) Validate() error {
	if cfg.MaxGrammarSizeMb < 0 {
		return fmt.Errorf("maxGrammarSizeMb must not be negative")
	}
	if cfg.MaxInputSizeMb < 0 {
		return fmt.Errorf("maxInputSizeMb must not be negative")
	}
	if cfg.MaxImportDepth < 0 {
		return fmt.Errorf("maxImportDepth must not be negative")
	}
	if cfg.Cache.MaxSize < 0 {
		return fmt.Errorf("cache.maxSize must not be negative")
	}
	return nil
}

// Load reads and parses a YAML config file at path. A missing file is
// not an error: Load returns a zero Config, so the caller can apply
// FillDefaults and run with documented defaults (spec.md §6 describes
// this as an "optional" surface, not a required one).
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}
