package stream

import "testing"

func TestParse(t *testing.T) {
	t.Run("decodes usage counters", func(t *testing.T) {
		line := `{"type":"assistant","usage":{"input_tokens":10,"output_tokens":20,"cache_read_input_tokens":30,"cache_creation":{"ephemeral_5m_input_tokens":5,"ephemeral_1h_input_tokens":7}}}`
		rec, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		u := rec.Usage
		if u == nil {
			t.Fatal("usage not decoded")
		}
		if u.InputTokens != 10 || u.OutputTokens != 20 || u.CacheReadInputTokens != 30 {
			t.Errorf("tokens = %d/%d/%d", u.InputTokens, u.OutputTokens, u.CacheReadInputTokens)
		}
		if u.CacheCreation == nil || u.CacheCreation.Ephemeral5mInputTokens != 5 || u.CacheCreation.Ephemeral1hInputTokens != 7 {
			t.Errorf("cache creation = %+v", u.CacheCreation)
		}
	})

	t.Run("tolerates string-shaped content", func(t *testing.T) {
		rec, err := Parse(`{"type":"user","message":{"content":"plain text result"}}`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(rec.Message.Content) != 0 {
			t.Errorf("string content should decode to no blocks, got %d", len(rec.Message.Content))
		}
	})

	t.Run("empty line errors", func(t *testing.T) {
		if _, err := Parse("  \t "); err == nil {
			t.Fatal("expected error for blank line")
		}
	})

	t.Run("invalid json errors", func(t *testing.T) {
		if _, err := Parse(`{"type":`); err == nil {
			t.Fatal("expected error for invalid json")
		}
	})

	t.Run("null result stays nil", func(t *testing.T) {
		rec, err := Parse(`{"type":"result","result":null}`)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if rec.Result != nil {
			t.Errorf("result = %q, want nil", *rec.Result)
		}
	})
}
