package config

import (
	"fmt"
	"os"
	"strings"
)

// Config is the full ralph configuration. Zero values are filled from
// DefaultConfig by the loader.
type Config struct {
	Agent   AgentConfig   `yaml:"agent" toml:"agent"`
	Prompt  PromptConfig  `yaml:"prompt" toml:"prompt"`
	Loop    LoopConfig    `yaml:"loop" toml:"loop"`
	Pricing PricingConfig `yaml:"pricing" toml:"pricing"`
}

type AgentConfig struct {
	// Binary is the agent executable; empty means "claude" from PATH.
	Binary  string `yaml:"binary" toml:"binary"`
	Model   string `yaml:"model" toml:"model"`
	WorkDir string `yaml:"work_dir" toml:"work_dir"`
}

// PromptConfig is the instruction payload handed to every invocation.
// Exactly one of Text or File must be set.
type PromptConfig struct {
	Text string `yaml:"text" toml:"text"`
	File string `yaml:"file" toml:"file"`
}

type LoopConfig struct {
	LogPath           string   `yaml:"log_path" toml:"log_path"`
	Sentinel          string   `yaml:"sentinel" toml:"sentinel"`
	SentinelMode      string   `yaml:"sentinel_mode" toml:"sentinel_mode"` // "prefix" or "contains"
	CooldownSeconds   int      `yaml:"cooldown_seconds" toml:"cooldown_seconds"`
	RateLimitPatterns []string `yaml:"rate_limit_patterns" toml:"rate_limit_patterns"`
}

// PricingConfig is the per-million-token rate card, in USD.
type PricingConfig struct {
	InputPerMTok      float64 `yaml:"input_per_mtok" toml:"input_per_mtok"`
	OutputPerMTok     float64 `yaml:"output_per_mtok" toml:"output_per_mtok"`
	CacheReadPerMTok  float64 `yaml:"cache_read_per_mtok" toml:"cache_read_per_mtok"`
	CacheWritePerMTok float64 `yaml:"cache_write_per_mtok" toml:"cache_write_per_mtok"`
}

// PromptText resolves the instruction payload, reading the prompt file when
// one is configured.
func (c *Config) PromptText() (string, error) {
	if c.Prompt.File != "" {
		data, err := os.ReadFile(c.Prompt.File)
		if err != nil {
			return "", fmt.Errorf("read prompt file: %w", err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("prompt file %s is empty", c.Prompt.File)
		}
		return text, nil
	}
	if c.Prompt.Text == "" {
		return "", fmt.Errorf("no prompt configured — set prompt.text or prompt.file")
	}
	return c.Prompt.Text, nil
}
