// Package model holds the normalized transcript entry model.
//
// Content blocks, tool-use results and entries are closed unions: every
// variant implements an interface with an unexported marker method, and the
// parse package is the only producer. Values are never mutated after
// construction.
package model

import "encoding/json"

const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
	BlockThinking   = "thinking"
	BlockImage      = "image"
)

type ContentBlock interface {
	BlockType() string
	isContentBlock()
}

type TextBlock struct {
	Text string
}

type ToolUseBlock struct {
	ID    string
	Name  string
	Input map[string]any
}

type ToolResultBlock struct {
	ToolUseID string
	Content   ToolResultContent
	IsError   *bool
}

type ThinkingBlock struct {
	Thinking  string
	Signature *string
}

type ImageBlock struct {
	Source ImageSource
}

type ImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

func (TextBlock) BlockType() string       { return BlockText }
func (ToolUseBlock) BlockType() string    { return BlockToolUse }
func (ToolResultBlock) BlockType() string { return BlockToolResult }
func (ThinkingBlock) BlockType() string   { return BlockThinking }
func (ImageBlock) BlockType() string      { return BlockImage }

func (TextBlock) isContentBlock()       {}
func (ToolUseBlock) isContentBlock()    {}
func (ToolResultBlock) isContentBlock() {}
func (ThinkingBlock) isContentBlock()   {}
func (ImageBlock) isContentBlock()      {}

// ToolResultContent is either plain text or a list of untyped items.
// Items is non-nil exactly when the source value was a list.
type ToolResultContent struct {
	Text  string
	Items []map[string]any
}

func (c ToolResultContent) IsList() bool { return c.Items != nil }

func (c ToolResultContent) MarshalJSON() ([]byte, error) {
	if c.Items != nil {
		return json.Marshal(c.Items)
	}
	return json.Marshal(c.Text)
}

func (b TextBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{BlockText, b.Text})
}

func (b ToolUseBlock) MarshalJSON() ([]byte, error) {
	input := b.Input
	if input == nil {
		input = map[string]any{}
	}
	return json.Marshal(struct {
		Type  string         `json:"type"`
		ID    string         `json:"id"`
		Name  string         `json:"name"`
		Input map[string]any `json:"input"`
	}{BlockToolUse, b.ID, b.Name, input})
}

func (b ToolResultBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string            `json:"type"`
		ToolUseID string            `json:"tool_use_id"`
		Content   ToolResultContent `json:"content"`
		IsError   *bool             `json:"is_error,omitempty"`
	}{BlockToolResult, b.ToolUseID, b.Content, b.IsError})
}

func (b ThinkingBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string  `json:"type"`
		Thinking  string  `json:"thinking"`
		Signature *string `json:"signature,omitempty"`
	}{BlockThinking, b.Thinking, b.Signature})
}

func (b ImageBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string      `json:"type"`
		Source ImageSource `json:"source"`
	}{BlockImage, b.Source})
}
