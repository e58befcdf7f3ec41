package config

func DefaultConfig() Config {
	return Config{
		Agent: AgentConfig{
			Binary: "claude",
		},
		Loop: LoopConfig{
			LogPath:         ".ralph/output.jsonl",
			Sentinel:        "DONE",
			SentinelMode:    "prefix",
			CooldownSeconds: 60,
			RateLimitPatterns: []string{
				`(?i)limit\s+reach`,
				`(?i)claude.*(?:usage|use|limit).*reach`,
			},
		},
		Pricing: PricingConfig{
			InputPerMTok:      3.00,
			OutputPerMTok:     15.00,
			CacheReadPerMTok:  0.30,
			CacheWritePerMTok: 3.75,
		},
	}
}
