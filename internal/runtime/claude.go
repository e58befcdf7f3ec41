package runtime

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MinAgentVersion is the oldest claude CLI known to emit the stream-json
// fields the classifier and detector consume.
const MinAgentVersion = "1.0.0"

var agentVersionRe = regexp.MustCompile(`\d+\.\d+\.\d+`)

type ClaudeRuntime struct {
	path string
}

// NewClaudeRuntime resolves the agent binary. An explicit path wins;
// otherwise PATH is searched.
func NewClaudeRuntime(path string) (*ClaudeRuntime, error) {
	if path == "" {
		path = "claude"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("agent binary %q not found in PATH — install from https://docs.anthropic.com/en/docs/claude-code", path)
	}
	return &ClaudeRuntime{path: resolved}, nil
}

// BuildArgs constructs the invocation argument list. The resume flag is the
// only part that varies between iterations.
func (c *ClaudeRuntime) BuildArgs(prompt string, opts RunOptions) []string {
	var args []string
	if opts.Resume {
		args = append(args, "--continue")
	}
	args = append(args,
		"--dangerously-skip-permissions",
		"--verbose",
		"--output-format", "stream-json",
	)
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}
	args = append(args, "-p", prompt)
	return args
}

// Start spawns the agent with stderr folded into stdout so the supervisor
// reads a single line stream.
func (c *ClaudeRuntime) Start(ctx context.Context, prompt string, opts RunOptions) (*Process, error) {
	cmd := exec.CommandContext(ctx, c.path, c.BuildArgs(prompt, opts)...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", c.path, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	return &Process{
		PID:    cmd.Process.Pid,
		Cmd:    cmd,
		Output: stdout,
		Done:   done,
	}, nil
}

// Version probes the agent binary's version.
func (c *ClaudeRuntime) Version(ctx context.Context) (*semver.Version, error) {
	out, err := exec.CommandContext(ctx, c.path, "--version").Output()
	if err != nil {
		return nil, fmt.Errorf("probe agent version: %w", err)
	}
	return ParseVersion(string(out))
}

// ParseVersion extracts a semantic version from `claude --version` output,
// e.g. "2.0.14 (Claude Code)".
func ParseVersion(out string) (*semver.Version, error) {
	m := agentVersionRe.FindString(out)
	if m == "" {
		return nil, fmt.Errorf("no version in %q", strings.TrimSpace(out))
	}
	return semver.NewVersion(m)
}

// VersionWarning returns a human-readable warning when the agent binary is
// older than MinAgentVersion, and "" otherwise. The probe is best-effort:
// an unreadable version never blocks the loop.
func (c *ClaudeRuntime) VersionWarning(ctx context.Context) string {
	v, err := c.Version(ctx)
	if err != nil {
		return ""
	}
	min := semver.MustParse(MinAgentVersion)
	if v.LessThan(min) {
		return fmt.Sprintf("agent version %s is older than the oldest supported %s; stream output may not parse", v, min)
	}
	return ""
}
