// Package cost tracks token usage and derived spend across supervisor
// iterations.
package cost

import (
	"time"

	"github.com/justinpbarnett/ralph/internal/stream"
)

// minElapsedHours floors the rate divisor so throughput numbers don't blow
// up in the first seconds of a run.
const minElapsedHours = 0.01

// Pricing is the per-million-token rate card used to derive cost.
type Pricing struct {
	InputPerMTok      float64
	OutputPerMTok     float64
	CacheReadPerMTok  float64
	CacheWritePerMTok float64
}

// DefaultPricing is Claude Sonnet 4 list pricing.
func DefaultPricing() Pricing {
	return Pricing{
		InputPerMTok:      3.00,
		OutputPerMTok:     15.00,
		CacheReadPerMTok:  0.30,
		CacheWritePerMTok: 3.75,
	}
}

// Accumulator sums token usage from raw stream-json lines. Totals only ever
// grow for the lifetime of the accumulator; cost and throughput are derived
// on demand, never stored.
type Accumulator struct {
	pricing Pricing
	start   time.Time
	now     func() time.Time

	iterations       int
	inputTokens      int
	outputTokens     int
	cacheReadTokens  int
	cacheWriteTokens int
}

func NewAccumulator(pricing Pricing) *Accumulator {
	return &Accumulator{
		pricing: pricing,
		start:   time.Now(),
		now:     time.Now,
	}
}

// BeginIteration bumps the iteration counter.
func (a *Accumulator) BeginIteration() {
	a.iterations++
}

// Record adds the usage counters of one raw log line. Malformed lines and
// lines without a usage object contribute nothing.
func (a *Accumulator) Record(line string) {
	rec, err := stream.Parse(line)
	if err != nil || rec.Usage == nil {
		return
	}

	u := rec.Usage
	a.inputTokens += u.InputTokens
	a.outputTokens += u.OutputTokens
	a.cacheReadTokens += u.CacheReadInputTokens
	if cc := u.CacheCreation; cc != nil {
		a.cacheWriteTokens += cc.Ephemeral5mInputTokens + cc.Ephemeral1hInputTokens
	}
}

// Stats is a point-in-time snapshot with derived cost and throughput.
type Stats struct {
	Iterations       int
	ElapsedHours     float64
	InputTokens      int
	OutputTokens     int
	CacheReadTokens  int
	CacheWriteTokens int
	TotalTokens      int
	CostUSD          float64
	TokensPerHour    float64
	CostPerHour      float64
}

// Snapshot returns the current totals and derived metrics.
func (a *Accumulator) Snapshot() Stats {
	elapsed := a.now().Sub(a.start).Hours()
	divisor := elapsed
	if divisor < minElapsedHours {
		divisor = minElapsedHours
	}

	total := a.inputTokens + a.outputTokens + a.cacheReadTokens + a.cacheWriteTokens
	cost := a.cost()

	return Stats{
		Iterations:       a.iterations,
		ElapsedHours:     elapsed,
		InputTokens:      a.inputTokens,
		OutputTokens:     a.outputTokens,
		CacheReadTokens:  a.cacheReadTokens,
		CacheWriteTokens: a.cacheWriteTokens,
		TotalTokens:      total,
		CostUSD:          cost,
		TokensPerHour:    float64(total) / divisor,
		CostPerHour:      cost / divisor,
	}
}

func (a *Accumulator) cost() float64 {
	const mtok = 1_000_000
	return float64(a.inputTokens)/mtok*a.pricing.InputPerMTok +
		float64(a.outputTokens)/mtok*a.pricing.OutputPerMTok +
		float64(a.cacheReadTokens)/mtok*a.pricing.CacheReadPerMTok +
		float64(a.cacheWriteTokens)/mtok*a.pricing.CacheWritePerMTok
}
