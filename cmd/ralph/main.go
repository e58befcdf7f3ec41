package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/justinpbarnett/ralph/internal/config"
	"github.com/justinpbarnett/ralph/internal/cost"
	"github.com/justinpbarnett/ralph/internal/detect"
	"github.com/justinpbarnett/ralph/internal/loop"
	"github.com/justinpbarnett/ralph/internal/runtime"
)

const repoSlug = "justinpbarnett/ralph"

const usage = `ralph — restart a coding agent until it finishes the job

Usage:
  ralph [run] [flags]  run the supervision loop
  ralph version        print version and check for updates
  ralph update         download and install the latest release

Flags:
  --config <path>   config file (default: ./ralph.yaml, ./ralph.toml,
                    then ~/.config/ralph/config.yaml)
  --prompt <path>   prompt file, overrides the configured prompt
  --single          run one iteration and exit
  -h, --help        show this help
`

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "version":
			runVersion(repoSlug)
			return
		case "update":
			runUpdate(repoSlug)
			return
		case "help", "-h", "--help":
			fmt.Print(usage)
			return
		}
	}

	opts, err := parseRunArgs(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if err := runLoop(opts.configPath, opts.promptFile, opts.single); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type runArgs struct {
	configPath string
	promptFile string
	single     bool
}

// parseRunArgs parses the loop flags. "run" is the default subcommand, so a
// leading "run" is stripped before flag parsing; otherwise the flag package
// would treat it as a positional argument and stop at it.
func parseRunArgs(args []string) (runArgs, error) {
	if len(args) > 0 && args[0] == "run" {
		args = args[1:]
	}

	var opts runArgs
	fs := flag.NewFlagSet("ralph", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	fs.StringVar(&opts.configPath, "config", "", "config file path")
	fs.StringVar(&opts.promptFile, "prompt", "", "prompt file path")
	fs.BoolVar(&opts.single, "single", false, "run one iteration and exit")
	err := fs.Parse(args)
	return opts, err
}

func runLoop(configPath, promptFile string, single bool) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if promptFile != "" {
		cfg.Prompt.File = promptFile
		cfg.Prompt.Text = ""
	}
	prompt, err := cfg.PromptText()
	if err != nil {
		return err
	}

	patterns := make([]*regexp.Regexp, 0, len(cfg.Loop.RateLimitPatterns))
	for _, p := range cfg.Loop.RateLimitPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("rate_limit_patterns %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	rt, err := runtime.NewClaudeRuntime(cfg.Agent.Binary)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if w := rt.VersionWarning(ctx); w != "" {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	sup := loop.New(rt, loop.Options{
		Prompt:            prompt,
		Sentinel:          cfg.Loop.Sentinel,
		SentinelMode:      detect.MatchMode(cfg.Loop.SentinelMode),
		LogPath:           cfg.Loop.LogPath,
		Cooldown:          time.Duration(cfg.Loop.CooldownSeconds) * time.Second,
		Single:            single,
		Model:             cfg.Agent.Model,
		WorkDir:           cfg.Agent.WorkDir,
		RateLimitPatterns: patterns,
		Pricing: cost.Pricing{
			InputPerMTok:      cfg.Pricing.InputPerMTok,
			OutputPerMTok:     cfg.Pricing.OutputPerMTok,
			CacheReadPerMTok:  cfg.Pricing.CacheReadPerMTok,
			CacheWritePerMTok: cfg.Pricing.CacheWritePerMTok,
		},
	})

	if err := sup.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Interrupted by user.")
			return nil
		}
		return err
	}
	return nil
}
