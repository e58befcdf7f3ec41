package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load discovers a config file, merges it with defaults, applies environment
// variable overrides, validates the result, and returns the final config.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return LoadFrom(cwd)
}

// LoadFrom loads config using the given directory as the root for file
// discovery. Load calls it with os.Getwd().
func LoadFrom(dir string) (*Config, error) {
	path, err := discoverConfigPath(dir)
	if err != nil {
		return nil, fmt.Errorf("config discovery: %w", err)
	}
	return LoadFile(path)
}

// LoadFile loads config from an explicit file path. An empty path means
// defaults-only mode.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		override, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		merge(&cfg, override)
	}

	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigPath searches the discovery chain and returns the first
// config file that exists. Returns empty string if none found.
func discoverConfigPath(dir string) (string, error) {
	// 1. ./ralph.yaml or ./ralph.toml (relative to the project dir)
	for _, name := range []string{"ralph.yaml", "ralph.toml"} {
		local := filepath.Join(dir, name)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	// 2. ~/.config/ralph/config.yaml
	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil // can't resolve home, skip
	}
	user := filepath.Join(home, ".config", "ralph", "config.yaml")
	if _, err := os.Stat(user); err == nil {
		return user, nil
	}

	return "", nil
}

// loadFromFile reads and unmarshals a config file, picking the decoder by
// extension (.toml is TOML, everything else is YAML).
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	}

	return &cfg, nil
}

// merge deep-merges override onto base. Scalar fields override when
// non-zero; slices replace entirely when non-nil.
func merge(base *Config, override *Config) {
	// Agent
	if override.Agent.Binary != "" {
		base.Agent.Binary = override.Agent.Binary
	}
	if override.Agent.Model != "" {
		base.Agent.Model = override.Agent.Model
	}
	if override.Agent.WorkDir != "" {
		base.Agent.WorkDir = override.Agent.WorkDir
	}

	// Prompt
	if override.Prompt.Text != "" {
		base.Prompt.Text = override.Prompt.Text
	}
	if override.Prompt.File != "" {
		base.Prompt.File = override.Prompt.File
	}

	// Loop
	if override.Loop.LogPath != "" {
		base.Loop.LogPath = override.Loop.LogPath
	}
	if override.Loop.Sentinel != "" {
		base.Loop.Sentinel = override.Loop.Sentinel
	}
	if override.Loop.SentinelMode != "" {
		base.Loop.SentinelMode = override.Loop.SentinelMode
	}
	if override.Loop.CooldownSeconds != 0 {
		base.Loop.CooldownSeconds = override.Loop.CooldownSeconds
	}
	if override.Loop.RateLimitPatterns != nil {
		base.Loop.RateLimitPatterns = override.Loop.RateLimitPatterns
	}

	// Pricing
	if override.Pricing.InputPerMTok != 0 {
		base.Pricing.InputPerMTok = override.Pricing.InputPerMTok
	}
	if override.Pricing.OutputPerMTok != 0 {
		base.Pricing.OutputPerMTok = override.Pricing.OutputPerMTok
	}
	if override.Pricing.CacheReadPerMTok != 0 {
		base.Pricing.CacheReadPerMTok = override.Pricing.CacheReadPerMTok
	}
	if override.Pricing.CacheWritePerMTok != 0 {
		base.Pricing.CacheWritePerMTok = override.Pricing.CacheWritePerMTok
	}
}

// applyEnvOverrides applies RALPH_* environment variables on top of the
// config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RALPH_AGENT"); v != "" {
		cfg.Agent.Binary = v
	}
	if v := os.Getenv("RALPH_MODEL"); v != "" {
		cfg.Agent.Model = v
	}
	if v := os.Getenv("RALPH_LOG"); v != "" {
		cfg.Loop.LogPath = v
	}
	if v := os.Getenv("RALPH_SENTINEL"); v != "" {
		cfg.Loop.Sentinel = v
	}
	if v := os.Getenv("RALPH_SENTINEL_MODE"); v != "" {
		cfg.Loop.SentinelMode = v
	}
	if v := os.Getenv("RALPH_COOLDOWN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Loop.CooldownSeconds = n
		} else {
			fmt.Fprintf(os.Stderr, "warning: RALPH_COOLDOWN=%q is not a valid integer, ignoring\n", v)
		}
	}
}
