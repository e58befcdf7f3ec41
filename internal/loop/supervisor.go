// Package loop drives the agent supervision cycle: spawn, stream, detect
// terminal signals, sleep, repeat.
package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/justinpbarnett/ralph/internal/cost"
	"github.com/justinpbarnett/ralph/internal/detect"
	"github.com/justinpbarnett/ralph/internal/runtime"
	"github.com/justinpbarnett/ralph/internal/stream"
	"github.com/justinpbarnett/ralph/internal/ui"
)

// State is the supervisor's position in its retry state machine.
type State string

const (
	StateFreshStart State = "fresh-start"
	StateResume     State = "resume"
	StateSleeping   State = "sleeping"
	StateStopped    State = "stopped-success"
)

// Options configures one Supervisor. A single Supervisor type serves every
// deployment; prompt, sentinel, and log path are data, not code.
type Options struct {
	Prompt            string
	Sentinel          string
	SentinelMode      detect.MatchMode
	LogPath           string
	Cooldown          time.Duration
	Single            bool
	Model             string
	WorkDir           string
	RateLimitPatterns []*regexp.Regexp
	Pricing           cost.Pricing

	Out io.Writer // streamed per-line summaries (default os.Stdout)
	Err io.Writer // iteration/status messages (default os.Stderr)
}

// Supervisor restarts the agent across iterations until it declares the
// task complete. It owns exactly one child process at a time; every wait is
// interruptible through the context.
type Supervisor struct {
	rt    runtime.Runtime
	opts  Options
	stats *cost.Accumulator
	state State

	nowFn   func() time.Time
	sleepFn func(ctx context.Context, d time.Duration) error
}

func New(rt runtime.Runtime, opts Options) *Supervisor {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.SentinelMode == "" {
		opts.SentinelMode = detect.MatchPrefix
	}
	return &Supervisor{
		rt:      rt,
		opts:    opts,
		stats:   cost.NewAccumulator(opts.Pricing),
		state:   StateFreshStart,
		nowFn:   time.Now,
		sleepFn: sleepCtx,
	}
}

// State returns the supervisor's current state.
func (s *Supervisor) State() State { return s.state }

// Run drives iterations until the completion sentinel appears or ctx is
// cancelled. A child that crashes, is killed, or emits nothing parseable is
// indistinguishable from "no terminal signal" and simply restarts fresh
// after the cooldown.
func (s *Supervisor) Run(ctx context.Context) error {
	log, err := OpenRunLog(s.opts.LogPath)
	if err != nil {
		return err
	}
	defer log.Close()

	for {
		s.stats.BeginIteration()
		s.printBanner()

		resume := s.state == StateResume
		s.state = StateFreshStart // reset; re-enabled only by a rate limit

		if err := s.runIteration(ctx, log, resume); err != nil {
			return err
		}

		last := log.LastLine()

		if detect.Completion(last, s.opts.Sentinel, s.opts.SentinelMode) {
			s.state = StateStopped
			s.printFinal()
			return nil
		}

		if reset, ok, derr := detect.ResetTimeWith(s.opts.RateLimitPatterns, last, s.nowFn()); derr != nil {
			s.statusf(ui.Warning, "rate-limit check: %v", derr)
		} else if ok {
			s.state = StateSleeping
			wait := reset.Sub(s.nowFn())
			if wait < 0 {
				wait = 0
			}
			s.statusf(ui.Warning, "Rate limited, sleeping %s (until %s)", wait.Round(time.Second), reset.Format(time.RFC3339))
			if err := s.sleepFn(ctx, wait); err != nil {
				return err
			}
			s.state = StateResume
		}

		if s.opts.Single {
			st := s.stats.Snapshot()
			s.statusf(ui.Banner, "Single iteration complete: %.1fh | $%.2f | %s tokens", st.ElapsedHours, st.CostUSD, groupDigits(st.TotalTokens))
			return nil
		}

		// Unconditional cooldown, on top of any rate-limit sleep, to bound
		// retry pressure when detection misfires.
		if err := s.sleepFn(ctx, s.opts.Cooldown); err != nil {
			return err
		}
	}
}

func (s *Supervisor) runIteration(ctx context.Context, log *RunLog, resume bool) error {
	mode := "fresh"
	if resume {
		mode = "resume"
	}
	// Never echo the prompt itself; it can be pages long.
	s.statusf(ui.Banner, "Starting agent (%s) [with prompt]", mode)

	proc, err := s.rt.Start(ctx, s.opts.Prompt, runtime.RunOptions{
		Resume:  resume,
		Model:   s.opts.Model,
		WorkDir: s.opts.WorkDir,
	})
	if err != nil {
		return fmt.Errorf("start agent: %w", err)
	}

	scanner := bufio.NewScanner(proc.Output)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line
	for scanner.Scan() {
		line := scanner.Text()
		if err := log.Append(line); err != nil {
			s.statusf(ui.Warning, "%v", err)
		}
		s.stats.Record(line)
		if summary, ok := stream.Classify(line); ok {
			s.printSummary(summary)
		}
	}
	if err := scanner.Err(); err != nil {
		// A truncated stream is handled like a crash: no terminal signal.
		s.statusf(ui.Warning, "read agent output: %v", err)
	}

	// Exit status carries no signal; a failed run restarts fresh anyway.
	<-proc.Done
	return nil
}

func (s *Supervisor) printBanner() {
	st := s.stats.Snapshot()
	s.statusf(ui.Banner, "Iteration %d | %.1fh | $%.2f | %s tokens",
		st.Iterations, st.ElapsedHours, st.CostUSD, groupDigits(st.TotalTokens))
}

func (s *Supervisor) printFinal() {
	st := s.stats.Snapshot()
	s.statusf(ui.Success, "Agent declared completion after %d iterations", st.Iterations)
	s.statusf(ui.Banner, "Final stats: %.1fh | $%.2f | %s tokens", st.ElapsedHours, st.CostUSD, groupDigits(st.TotalTokens))
	s.statusf(ui.Banner, "Average: $%.2f/hr | %s tokens/hr", st.CostPerHour, groupDigits(int(st.TokensPerHour)))
}

// printSummary writes one classified line to the summary stream with a
// timestamp prefix, styled by summary kind.
func (s *Supervisor) printSummary(summary string) {
	style := ui.Assistant
	switch {
	case strings.HasPrefix(summary, "Tool: "):
		style = ui.Tool
	case strings.HasPrefix(summary, "System "):
		style = ui.System
	}
	ts := s.nowFn().Format("15:04:05")
	fmt.Fprintf(s.opts.Out, "%s %s\n", ui.Timestamp.Render("["+ts+"]"), style.Render(summary))
}

func (s *Supervisor) statusf(style interface{ Render(...string) string }, format string, args ...any) {
	ts := s.nowFn().Format("15:04:05")
	fmt.Fprintf(s.opts.Err, "%s %s\n", ui.Timestamp.Render("["+ts+"]"), style.Render(fmt.Sprintf(format, args...)))
}

// sleepCtx blocks for d or until ctx is cancelled, so a multi-hour
// rate-limit sleep never outlives an interrupt.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// groupDigits renders n with thousands separators (1234567 -> "1,234,567").
func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 || (s[0] == '-' && len(s) <= 4) {
		return s
	}
	var b strings.Builder
	start := 0
	if s[0] == '-' {
		b.WriteByte('-')
		start = 1
	}
	digits := s[start:]
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}
