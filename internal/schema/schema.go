// Package schema validates content against the vendor's canonical message
// shapes. It is strict where the transcript model is permissive: unknown
// fields are rejected and every required field must be present.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
)

// Canonical implements the parser's strict validation tier.
type Canonical struct{}

var errWrongType = errors.New("wrong block type")

type textBlock struct {
	Type      *string         `json:"type"`
	Text      *string         `json:"text"`
	Citations json.RawMessage `json:"citations"`
}

type toolUseBlock struct {
	Type  *string         `json:"type"`
	ID    *string         `json:"id"`
	Name  *string         `json:"name"`
	Input json.RawMessage `json:"input"`
}

type thinkingBlock struct {
	Type      *string `json:"type"`
	Thinking  *string `json:"thinking"`
	Signature *string `json:"signature"`
}

type message struct {
	ID           *string           `json:"id"`
	Type         *string           `json:"type"`
	Role         *string           `json:"role"`
	Model        *string           `json:"model"`
	Content      []json.RawMessage `json:"content"`
	StopReason   *string           `json:"stop_reason"`
	StopSequence *string           `json:"stop_sequence"`
	Usage        json.RawMessage   `json:"usage"`
	Container    json.RawMessage   `json:"container"`
}

func (Canonical) TextBlock(raw []byte) (model.TextBlock, error) {
	var b textBlock
	if err := strict(raw, &b); err != nil {
		return model.TextBlock{}, err
	}
	if err := require("type", b.Type, "text"); err != nil {
		return model.TextBlock{}, err
	}
	if b.Text == nil {
		return model.TextBlock{}, missing("text")
	}
	return model.TextBlock{Text: *b.Text}, nil
}

func (Canonical) ToolUseBlock(raw []byte) (model.ToolUseBlock, error) {
	var b toolUseBlock
	if err := strict(raw, &b); err != nil {
		return model.ToolUseBlock{}, err
	}
	if err := require("type", b.Type, "tool_use"); err != nil {
		return model.ToolUseBlock{}, err
	}
	if b.ID == nil {
		return model.ToolUseBlock{}, missing("id")
	}
	if b.Name == nil {
		return model.ToolUseBlock{}, missing("name")
	}
	if isNull(b.Input) {
		return model.ToolUseBlock{}, missing("input")
	}
	var input map[string]any
	if err := json.Unmarshal(b.Input, &input); err != nil {
		return model.ToolUseBlock{}, fmt.Errorf("input: %w", err)
	}
	return model.ToolUseBlock{ID: *b.ID, Name: *b.Name, Input: input}, nil
}

func (Canonical) ThinkingBlock(raw []byte) (model.ThinkingBlock, error) {
	var b thinkingBlock
	if err := strict(raw, &b); err != nil {
		return model.ThinkingBlock{}, err
	}
	if err := require("type", b.Type, "thinking"); err != nil {
		return model.ThinkingBlock{}, err
	}
	if b.Thinking == nil {
		return model.ThinkingBlock{}, missing("thinking")
	}
	if b.Signature == nil {
		return model.ThinkingBlock{}, missing("signature")
	}
	sig := *b.Signature
	return model.ThinkingBlock{Thinking: *b.Thinking, Signature: &sig}, nil
}

// Message checks a whole assistant message. Content blocks must each be a
// known canonical block.
func (c Canonical) Message(raw []byte) error {
	var m message
	if err := strict(raw, &m); err != nil {
		return err
	}
	if m.ID == nil {
		return missing("id")
	}
	if err := require("type", m.Type, "message"); err != nil {
		return err
	}
	if err := require("role", m.Role, "assistant"); err != nil {
		return err
	}
	if m.Model == nil {
		return missing("model")
	}
	if m.Content == nil {
		return missing("content")
	}
	for i, item := range m.Content {
		if err := c.block(item); err != nil {
			return fmt.Errorf("content[%d]: %w", i, err)
		}
	}
	if isNull(m.Usage) {
		return missing("usage")
	}
	if _, err := c.Usage(m.Usage); err != nil {
		return fmt.Errorf("usage: %w", err)
	}
	return nil
}

func (c Canonical) block(raw []byte) error {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return err
	}
	var err error
	switch probe.Type {
	case model.BlockText:
		_, err = c.TextBlock(raw)
	case model.BlockToolUse:
		_, err = c.ToolUseBlock(raw)
	case model.BlockThinking:
		_, err = c.ThinkingBlock(raw)
	case "redacted_thinking", "server_tool_use", "web_search_tool_result":
		// accepted without inspection
	default:
		err = fmt.Errorf("%w: %q", errWrongType, probe.Type)
	}
	return err
}

func strict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}

func require(field string, got *string, want string) error {
	if got == nil {
		return missing(field)
	}
	if *got != want {
		return fmt.Errorf("%s: %w: got %q, want %q", field, errWrongType, *got, want)
	}
	return nil
}

func missing(field string) error {
	return fmt.Errorf("%s: field required", field)
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
