package stream

import "fmt"

const (
	maxSummaryLen   = 120
	wordBoundaryMin = 100
)

// Classify renders a short one-line console summary for a raw output line.
// The second return is false when the line should not be shown: user records
// (mostly tool-result noise), tool_use blocks that travel with text,
// unknown record types, and anything that fails to parse.
func Classify(line string) (string, bool) {
	rec, err := Parse(line)
	if err != nil {
		return "", false
	}

	switch rec.Type {
	case "assistant":
		return classifyAssistant(rec)
	case "system":
		subtype := rec.Subtype
		if subtype == "" {
			subtype = "unknown"
		}
		return fmt.Sprintf("System %s | %d tools", subtype, len(rec.Tools)), true
	default:
		return "", false
	}
}

func classifyAssistant(rec *Record) (string, bool) {
	if rec.Message == nil || len(rec.Message.Content) == 0 {
		return "Assistant message", true
	}

	first := rec.Message.Content[0]
	switch first.Type {
	case "text":
		return "Claude: " + truncate(first.Text), true
	case "tool_use":
		if len(rec.Message.Content) == 1 {
			return "Tool: " + first.Name, true
		}
		// The accompanying text block is classified on its own line.
		return "", false
	default:
		return "Assistant message", true
	}
}

// truncate caps text at 120 characters, preferring to cut at the last space
// when one falls at offset 100 or later so the cut lands on a word boundary.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxSummaryLen {
		return text
	}
	cut := runes[:maxSummaryLen]
	if idx := lastSpace(cut); idx >= wordBoundaryMin {
		cut = cut[:idx]
	}
	return string(cut) + "..."
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
