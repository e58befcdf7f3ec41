package stream

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
		show bool
	}{
		{
			name: "assistant text",
			line: `{"type":"assistant","message":{"content":[{"type":"text","text":"Reading the config loader next."}]}}`,
			want: "Claude: Reading the config loader next.",
			show: true,
		},
		{
			name: "assistant single tool use",
			line: `{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Bash","input":{}}]}}`,
			want: "Tool: Bash",
			show: true,
		},
		{
			name: "assistant tool use with trailing text suppressed",
			line: `{"type":"assistant","message":{"content":[{"type":"tool_use","name":"Bash"},{"type":"text","text":"running tests"}]}}`,
			show: false,
		},
		{
			name: "assistant text before tool use classified by text",
			line: `{"type":"assistant","message":{"content":[{"type":"text","text":"Let me check."},{"type":"tool_use","name":"Read"}]}}`,
			want: "Claude: Let me check.",
			show: true,
		},
		{
			name: "assistant empty content",
			line: `{"type":"assistant","message":{"content":[]}}`,
			want: "Assistant message",
			show: true,
		},
		{
			name: "assistant missing message",
			line: `{"type":"assistant"}`,
			want: "Assistant message",
			show: true,
		},
		{
			name: "assistant unknown block type",
			line: `{"type":"assistant","message":{"content":[{"type":"thinking","text":"hmm"}]}}`,
			want: "Assistant message",
			show: true,
		},
		{
			name: "system init with tools",
			line: `{"type":"system","subtype":"init","tools":[{},{},{}]}`,
			want: "System init | 3 tools",
			show: true,
		},
		{
			name: "system without subtype",
			line: `{"type":"system"}`,
			want: "System unknown | 0 tools",
			show: true,
		},
		{
			name: "user record suppressed",
			line: `{"type":"user","message":{"content":[{"type":"tool_result","text":"ok"}]}}`,
			show: false,
		},
		{
			name: "user string content suppressed",
			line: `{"type":"user","message":{"content":"raw tool output"}}`,
			show: false,
		},
		{
			name: "result record suppressed",
			line: `{"type":"result","result":"DONE"}`,
			show: false,
		},
		{
			name: "malformed json suppressed",
			line: `{"type":"assistant",`,
			show: false,
		},
		{
			name: "empty line suppressed",
			line: "   ",
			show: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, show := Classify(tt.line)
			if show != tt.show {
				t.Fatalf("Classify(%q) show = %v, want %v", tt.line, show, tt.show)
			}
			if show && got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		if got := truncate("hello"); got != "hello" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("exactly max length unchanged", func(t *testing.T) {
		text := strings.Repeat("a", maxSummaryLen)
		if got := truncate(text); got != text {
			t.Errorf("got %d chars, want unchanged", len(got))
		}
	})

	t.Run("long text cut at word boundary", func(t *testing.T) {
		// A space at offset 110 falls inside the boundary window.
		text := strings.Repeat("a", 110) + " " + strings.Repeat("b", 50)
		got := truncate(text)
		want := strings.Repeat("a", 110) + "..."
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("hard cut when no late space", func(t *testing.T) {
		// Only space is at offset 50, before the boundary window.
		text := strings.Repeat("a", 50) + " " + strings.Repeat("b", 100)
		got := truncate(text)
		want := strings.Repeat("a", 50) + " " + strings.Repeat("b", 69) + "..."
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
		if len([]rune(got)) != maxSummaryLen+3 {
			t.Errorf("got %d runes, want %d", len([]rune(got)), maxSummaryLen+3)
		}
	})

	t.Run("multibyte runes counted as characters", func(t *testing.T) {
		text := strings.Repeat("日", 130)
		got := truncate(text)
		if want := strings.Repeat("日", 120) + "..."; got != want {
			t.Errorf("got %d runes", len([]rune(got)))
		}
	})
}
