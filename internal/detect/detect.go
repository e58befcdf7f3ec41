// Package detect inspects the final record of an agent run for the two
// signals that change the supervisor's control flow: a rate-limit notice
// carrying a reset time, and a declared-completion sentinel.
package detect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/justinpbarnett/ralph/internal/stream"
)

// MatchMode selects how the completion sentinel is compared against the
// final result text.
type MatchMode string

const (
	// MatchPrefix requires the result to start with the sentinel.
	MatchPrefix MatchMode = "prefix"
	// MatchContains requires the sentinel to appear anywhere in the result.
	MatchContains MatchMode = "contains"
)

// RateLimitPatterns are the default phrasings of an upstream rate-limit
// notice. Two forms have been observed in the wild; they are tried in
// sequence and a match on either counts.
var RateLimitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)limit\s+reach`),
	regexp.MustCompile(`(?i)claude.*(?:usage|use|limit).*reach`),
}

var resetTimeRe = regexp.MustCompile(`(?i)resets\s+(\d{1,2})(am|pm)`)

// ResetTime reports the reset moment signalled by raw, using the default
// pattern set. raw is the last non-empty line of the run log.
func ResetTime(raw string, now time.Time) (time.Time, bool, error) {
	return ResetTimeWith(RateLimitPatterns, raw, now)
}

// ResetTimeWith is ResetTime with a caller-supplied pattern set. A non-nil
// error is diagnostic only: it means the line looked relevant but could not
// be decoded, and the caller should treat it as "no rate limit".
func ResetTimeWith(patterns []*regexp.Regexp, raw string, now time.Time) (time.Time, bool, error) {
	if len(patterns) == 0 {
		patterns = RateLimitPatterns
	}

	rec, err := stream.Parse(raw)
	if err != nil {
		if strings.TrimSpace(raw) == "" {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("parse last record: %w", err)
	}

	// A rate-limit notice arrives either as a top-level error result or as
	// assistant-authored text.
	if rec.IsError && rec.Result != nil {
		return resetFromText(patterns, *rec.Result, now)
	}
	if rec.Type == "assistant" && rec.Message != nil {
		for _, block := range rec.Message.Content {
			if block.Type != "text" {
				continue
			}
			if t, ok, err := resetFromText(patterns, block.Text, now); ok || err != nil {
				return t, ok, err
			}
		}
	}
	return time.Time{}, false, nil
}

func resetFromText(patterns []*regexp.Regexp, text string, now time.Time) (time.Time, bool, error) {
	if !matchesAny(patterns, text) {
		return time.Time{}, false, nil
	}

	if m := resetTimeRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		switch strings.ToLower(m[2]) {
		case "pm":
			if hour != 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
		reset := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !reset.After(now) {
			reset = reset.AddDate(0, 0, 1)
		}
		return reset, true, nil
	}

	// Legacy format: "<message>|<epoch seconds>".
	if _, after, found := strings.Cut(text, "|"); found {
		epoch, err := strconv.ParseInt(strings.TrimSpace(after), 10, 64)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parse reset epoch %q: %w", after, err)
		}
		return time.Unix(epoch, 0), true, nil
	}

	return time.Time{}, false, nil
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Completion reports whether raw declares the task done: a record carrying a
// result field whose trimmed, upper-cased text matches the sentinel under
// the given mode. Never errors; undetectable means not complete.
func Completion(raw, sentinel string, mode MatchMode) bool {
	if sentinel == "" {
		return false
	}
	rec, err := stream.Parse(raw)
	if err != nil || rec.Result == nil {
		return false
	}

	result := strings.ToUpper(strings.TrimSpace(*rec.Result))
	token := strings.ToUpper(strings.TrimSpace(sentinel))
	if mode == MatchContains {
		return strings.Contains(result, token)
	}
	return strings.HasPrefix(result, token)
}
