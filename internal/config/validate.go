package config

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError collects multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// validate checks the config for internal consistency and returns a
// ValidationError if any checks fail. All checks run; errors are collected,
// not short-circuited.
func validate(cfg *Config) error {
	var errs []string

	// Sentinel mode must be a known value
	switch cfg.Loop.SentinelMode {
	case "prefix", "contains":
	default:
		errs = append(errs, fmt.Sprintf("loop.sentinel_mode %q must be \"prefix\" or \"contains\"", cfg.Loop.SentinelMode))
	}

	if cfg.Loop.Sentinel == "" {
		errs = append(errs, "loop.sentinel must not be empty")
	}
	if cfg.Loop.LogPath == "" {
		errs = append(errs, "loop.log_path must not be empty")
	}
	if cfg.Loop.CooldownSeconds < 0 {
		errs = append(errs, "loop.cooldown_seconds must not be negative")
	}

	// Prompt sources are mutually exclusive; presence is checked at run
	// time so that version/update subcommands work without a prompt.
	if cfg.Prompt.Text != "" && cfg.Prompt.File != "" {
		errs = append(errs, "prompt.text and prompt.file are mutually exclusive")
	}

	// Rate-limit patterns must be valid regex
	for i, pattern := range cfg.Loop.RateLimitPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Sprintf("loop.rate_limit_patterns[%d] %q is not valid regex: %v", i, pattern, err))
		}
	}

	// Pricing must not be negative
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"pricing.input_per_mtok", cfg.Pricing.InputPerMTok},
		{"pricing.output_per_mtok", cfg.Pricing.OutputPerMTok},
		{"pricing.cache_read_per_mtok", cfg.Pricing.CacheReadPerMTok},
		{"pricing.cache_write_per_mtok", cfg.Pricing.CacheWritePerMTok},
	} {
		if p.value < 0 {
			errs = append(errs, fmt.Sprintf("%s must not be negative", p.name))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
