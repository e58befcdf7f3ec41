package stream

import (
	"encoding/json"
	"errors"
	"strings"
)

var errEmptyLine = errors.New("empty line")

// Record is one parsed line of the agent's stream-json output. Only the
// fields the supervisor consumes are decoded; everything else on the wire
// is ignored.
type Record struct {
	Type    string            `json:"type"`
	Subtype string            `json:"subtype"`
	IsError bool              `json:"is_error"`
	Result  *string           `json:"result"`
	Tools   []json.RawMessage `json:"tools"`
	Message *Message          `json:"message"`
	Usage   *Usage            `json:"usage"`
}

type Message struct {
	Content ContentList `json:"content"`
}

// ContentList tolerates the two shapes message.content takes on the wire:
// an ordered array of blocks, or a bare string on some user records.
type ContentList []ContentBlock

func (c *ContentList) UnmarshalJSON(data []byte) error {
	var blocks []ContentBlock
	if err := json.Unmarshal(data, &blocks); err == nil {
		*c = blocks
	}
	// Non-array content is never classified; dropping it beats failing the
	// whole record.
	return nil
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Name string `json:"name"`
}

type Usage struct {
	InputTokens          int            `json:"input_tokens"`
	OutputTokens         int            `json:"output_tokens"`
	CacheReadInputTokens int            `json:"cache_read_input_tokens"`
	CacheCreation        *CacheCreation `json:"cache_creation"`
}

type CacheCreation struct {
	Ephemeral5mInputTokens int `json:"ephemeral_5m_input_tokens"`
	Ephemeral1hInputTokens int `json:"ephemeral_1h_input_tokens"`
}

// Parse decodes one raw log line. An error means the line is unclassifiable,
// not that anything is wrong with the run.
func Parse(line string) (*Record, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, errEmptyLine
	}
	var rec Record
	if err := json.Unmarshal([]byte(trimmed), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
