package model

import "encoding/json"

// MessageContent is a user message body: a plain string or a block list.
// Blocks is non-nil exactly when the source value was a list.
type MessageContent struct {
	Text   string
	Blocks []ContentBlock
}

func StringContent(s string) MessageContent { return MessageContent{Text: s} }

func BlockContent(blocks []ContentBlock) MessageContent {
	if blocks == nil {
		blocks = []ContentBlock{}
	}
	return MessageContent{Blocks: blocks}
}

func (c MessageContent) IsList() bool { return c.Blocks != nil }

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Blocks != nil {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

type UserMessage struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopMaxTokens StopReason = "max_tokens"
	StopSequence  StopReason = "stop_sequence"
	StopToolUse   StopReason = "tool_use"
	StopPauseTurn StopReason = "pause_turn"
	StopRefusal   StopReason = "refusal"
)

// Known reports whether r is one of the stop reasons the API documents.
// Unknown values are kept as-is by the parser.
func (r StopReason) Known() bool {
	switch r {
	case StopEndTurn, StopMaxTokens, StopSequence, StopToolUse, StopPauseTurn, StopRefusal:
		return true
	}
	return false
}

type AssistantMessage struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Model        string         `json:"model"`
	Content      []ContentBlock `json:"content"`
	StopReason   *StopReason    `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        *Usage         `json:"usage,omitempty"`
}

// Usage carries token counters. Every field is optional.
type Usage struct {
	InputTokens              *int           `json:"input_tokens,omitempty"`
	OutputTokens             *int           `json:"output_tokens,omitempty"`
	CacheCreationInputTokens *int           `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     *int           `json:"cache_read_input_tokens,omitempty"`
	ServiceTier              *string        `json:"service_tier,omitempty"`
	ServerToolUse            map[string]any `json:"server_tool_use,omitempty"`
}

// Total returns input plus output tokens, counting absent fields as zero.
func (u *Usage) Total() int {
	if u == nil {
		return 0
	}
	n := 0
	if u.InputTokens != nil {
		n += *u.InputTokens
	}
	if u.OutputTokens != nil {
		n += *u.OutputTokens
	}
	return n
}
