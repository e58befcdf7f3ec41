package detect

import (
	"testing"
	"time"
)

func TestResetTimeEpochSuffix(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("error result with epoch", func(t *testing.T) {
		raw := `{"type":"result","is_error":true,"result":"Claude AI usage limit reached|1700000000"}`
		got, ok, err := ResetTime(raw, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatal("expected rate limit detected")
		}
		if want := time.Unix(1700000000, 0); !got.Equal(want) {
			t.Errorf("reset = %v, want %v", got, want)
		}
	})

	t.Run("untyped error record with epoch", func(t *testing.T) {
		raw := `{"is_error":true,"result":"Claude limit reached|1700000000"}`
		got, ok, err := ResetTime(raw, now)
		if err != nil || !ok {
			t.Fatalf("ok=%v err=%v", ok, err)
		}
		if want := time.Unix(1700000000, 0); !got.Equal(want) {
			t.Errorf("reset = %v, want %v", got, want)
		}
	})

	t.Run("assistant text with epoch", func(t *testing.T) {
		raw := `{"type":"assistant","message":{"content":[{"type":"text","text":"usage limit reached|1700000000"}]}}`
		got, ok, err := ResetTime(raw, now)
		if err != nil || !ok {
			t.Fatalf("ok=%v err=%v", ok, err)
		}
		if want := time.Unix(1700000000, 0); !got.Equal(want) {
			t.Errorf("reset = %v, want %v", got, want)
		}
	})

	t.Run("unparseable epoch is diagnostic", func(t *testing.T) {
		raw := `{"type":"result","is_error":true,"result":"limit reached|soon"}`
		_, ok, err := ResetTime(raw, now)
		if ok {
			t.Error("expected no reset time")
		}
		if err == nil {
			t.Error("expected diagnostic error for bad epoch")
		}
	})
}

func TestResetTimeClockPhrase(t *testing.T) {
	loc := time.UTC
	line := func(text string) string {
		return `{"type":"result","is_error":true,"result":"` + text + `"}`
	}

	tests := []struct {
		name string
		text string
		now  time.Time
		want time.Time
	}{
		{
			name: "future hour today",
			text: "Claude usage limit reached. Your limit resets 3pm.",
			now:  time.Date(2025, 6, 1, 10, 0, 0, 0, loc),
			want: time.Date(2025, 6, 1, 15, 0, 0, 0, loc),
		},
		{
			name: "past hour rolls to tomorrow",
			text: "Claude usage limit reached. Your limit resets 3am.",
			now:  time.Date(2025, 6, 1, 5, 0, 0, 0, loc),
			want: time.Date(2025, 6, 2, 3, 0, 0, 0, loc),
		},
		{
			name: "12am is midnight",
			text: "limit reached, resets 12am",
			now:  time.Date(2025, 6, 1, 5, 0, 0, 0, loc),
			want: time.Date(2025, 6, 2, 0, 0, 0, 0, loc),
		},
		{
			name: "12pm is noon",
			text: "limit reached, resets 12pm",
			now:  time.Date(2025, 6, 1, 5, 0, 0, 0, loc),
			want: time.Date(2025, 6, 1, 12, 0, 0, 0, loc),
		},
		{
			name: "exact reset hour rolls forward",
			text: "limit reached, resets 3pm",
			now:  time.Date(2025, 6, 1, 15, 0, 0, 0, loc),
			want: time.Date(2025, 6, 2, 15, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ResetTime(line(tt.text), tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				t.Fatal("expected rate limit detected")
			}
			if !got.Equal(tt.want) {
				t.Errorf("reset = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResetTimeNoSignal(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "ordinary result", raw: `{"type":"result","result":"all tests pass"}`},
		{name: "error without limit phrasing", raw: `{"type":"result","is_error":true,"result":"network timeout"}`},
		{name: "limit phrasing without reset info", raw: `{"type":"result","is_error":true,"result":"usage limit reached"}`},
		{name: "empty line", raw: ""},
		{name: "malformed json", raw: `{"type":`, wantErr: true},
		{name: "assistant tool use only", raw: `{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Bash"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := ResetTime(tt.raw, now)
			if ok {
				t.Error("expected no rate limit")
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompletion(t *testing.T) {
	result := func(text string) string {
		return `{"type":"result","result":"` + text + `"}`
	}

	tests := []struct {
		name     string
		raw      string
		sentinel string
		mode     MatchMode
		want     bool
	}{
		{name: "exact prefix", raw: result("DONE"), sentinel: "DONE", mode: MatchPrefix, want: true},
		{name: "prefix with trailing text", raw: result("DONE. All tasks complete."), sentinel: "DONE", mode: MatchPrefix, want: true},
		{name: "lowercase result matches", raw: result("done"), sentinel: "DONE", mode: MatchPrefix, want: true},
		{name: "leading whitespace trimmed", raw: result("  DONE"), sentinel: "DONE", mode: MatchPrefix, want: true},
		{name: "mid-string fails prefix", raw: result("All tasks DONE"), sentinel: "DONE", mode: MatchPrefix, want: false},
		{name: "mid-string passes contains", raw: result("All tasks DONE"), sentinel: "DONE", mode: MatchContains, want: true},
		{name: "progress marker not matched", raw: result("still working on it"), sentinel: "ACTUALLY_WORKING", mode: MatchContains, want: false},
		{name: "empty sentinel never matches", raw: result("DONE"), sentinel: "", mode: MatchPrefix, want: false},
		{name: "no result field", raw: `{"type":"assistant"}`, sentinel: "DONE", mode: MatchPrefix, want: false},
		{name: "malformed line", raw: `{"type":`, sentinel: "DONE", mode: MatchPrefix, want: false},
		{name: "empty line", raw: "", sentinel: "DONE", mode: MatchPrefix, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Completion(tt.raw, tt.sentinel, tt.mode); got != tt.want {
				t.Errorf("Completion = %v, want %v", got, tt.want)
			}
		})
	}
}
