package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
)

// ContentItem converts one content item. It never fails: anything that
// matches no known block shape becomes a text block holding the compact
// JSON of the item.
func (p *Parser) ContentItem(raw json.RawMessage) (block model.ContentBlock) {
	if !gjson.ValidBytes(raw) {
		return p.fallback(raw, "invalid")
	}
	item := gjson.ParseBytes(raw)
	if !item.IsObject() {
		return p.fallback(raw, "not_object")
	}
	typ := item.Get("type")
	if typ.Type != gjson.String {
		return p.fallback(raw, "missing")
	}

	defer func() {
		if r := recover(); r != nil {
			block = p.fallback(raw, typ.Str)
		}
	}()

	var err error
	switch typ.Str {
	case model.BlockText:
		block, err = p.textBlock(raw)
	case model.BlockToolUse:
		block, err = p.toolUseBlock(raw)
	case model.BlockThinking:
		block, err = p.thinkingBlock(raw)
	case model.BlockToolResult:
		block, err = toolResultBlock(raw)
	case model.BlockImage:
		block, err = imageBlock(raw)
	default:
		return p.fallback(raw, typ.Str)
	}
	if err != nil {
		p.logger.Debug("content item fallback", "type", typ.Str, "err", err)
		return p.fallback(raw, typ.Str)
	}
	return block
}

// MessageContent converts a message body: strings pass through, lists are
// converted item by item and any other value is stringified.
func (p *Parser) MessageContent(raw json.RawMessage) model.MessageContent {
	switch gjson.ParseBytes(raw).Type {
	case gjson.String:
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return model.StringContent(s)
		}
	case gjson.JSON:
		if items, ok := p.contentList(raw); ok {
			return model.BlockContent(items)
		}
	}
	return model.StringContent(compact(raw))
}

func (p *Parser) contentList(raw json.RawMessage) ([]model.ContentBlock, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	blocks := make([]model.ContentBlock, 0, len(items))
	for _, item := range items {
		blocks = append(blocks, p.ContentItem(item))
	}
	return blocks, true
}

func (p *Parser) fallback(raw json.RawMessage, blockType string) model.ContentBlock {
	p.fallbacks.Add(1)
	p.metrics.ContentFallback(blockType)
	return model.TextBlock{Text: stringify(raw)}
}

// stringify is compact, except that a JSON string yields its value.
func stringify(raw json.RawMessage) string {
	if t := bytes.TrimSpace(raw); len(t) > 0 && t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err == nil {
			return s
		}
	}
	return compact(raw)
}

func (p *Parser) textBlock(raw []byte) (model.ContentBlock, error) {
	if p.schema != nil {
		if b, err := p.schema.TextBlock(raw); err == nil {
			return b, nil
		}
	}
	var v struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if v.Text == nil {
		return nil, required("text")
	}
	return model.TextBlock{Text: *v.Text}, nil
}

func (p *Parser) toolUseBlock(raw []byte) (model.ContentBlock, error) {
	if p.schema != nil {
		if b, err := p.schema.ToolUseBlock(raw); err == nil {
			return b, nil
		}
	}
	var v struct {
		ID    *string         `json:"id"`
		Name  *string         `json:"name"`
		Input json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch {
	case v.ID == nil:
		return nil, required("id")
	case v.Name == nil:
		return nil, required("name")
	case isNull(v.Input):
		return nil, required("input")
	}
	var input map[string]any
	if err := json.Unmarshal(v.Input, &input); err != nil {
		return nil, mistyped("input", "object")
	}
	return model.ToolUseBlock{ID: *v.ID, Name: *v.Name, Input: input}, nil
}

func (p *Parser) thinkingBlock(raw []byte) (model.ContentBlock, error) {
	if p.schema != nil {
		if b, err := p.schema.ThinkingBlock(raw); err == nil {
			return b, nil
		}
	}
	var v struct {
		Thinking  *string `json:"thinking"`
		Signature *string `json:"signature"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if v.Thinking == nil {
		return nil, required("thinking")
	}
	return model.ThinkingBlock{Thinking: *v.Thinking, Signature: v.Signature}, nil
}

func toolResultBlock(raw []byte) (model.ContentBlock, error) {
	var v struct {
		ToolUseID *string         `json:"tool_use_id"`
		Content   json.RawMessage `json:"content"`
		IsError   *bool           `json:"is_error"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if v.ToolUseID == nil {
		return nil, required("tool_use_id")
	}
	if isNull(v.Content) {
		return nil, required("content")
	}
	var content model.ToolResultContent
	switch gjson.ParseBytes(v.Content).Type {
	case gjson.String:
		if err := json.Unmarshal(v.Content, &content.Text); err != nil {
			return nil, err
		}
	default:
		var items []map[string]any
		if err := json.Unmarshal(v.Content, &items); err != nil {
			return nil, mistyped("content", "string or list of objects")
		}
		if items == nil {
			items = []map[string]any{}
		}
		content.Items = items
	}
	return model.ToolResultBlock{ToolUseID: *v.ToolUseID, Content: content, IsError: v.IsError}, nil
}

var errImageSource = errors.New("image source must be base64")

func imageBlock(raw []byte) (model.ContentBlock, error) {
	var v struct {
		Source *struct {
			Type      *string `json:"type"`
			MediaType *string `json:"media_type"`
			Data      *string `json:"data"`
		} `json:"source"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch {
	case v.Source == nil:
		return nil, required("source")
	case v.Source.Type == nil:
		return nil, required("source.type")
	case *v.Source.Type != "base64":
		return nil, fmt.Errorf("%w: %q", errImageSource, *v.Source.Type)
	case v.Source.MediaType == nil:
		return nil, required("source.media_type")
	case v.Source.Data == nil:
		return nil, required("source.data")
	}
	return model.ImageBlock{Source: model.ImageSource{
		Type:      *v.Source.Type,
		MediaType: *v.Source.MediaType,
		Data:      *v.Source.Data,
	}}, nil
}

// compact renders raw as single-line JSON, or verbatim if it is not JSON.
func compact(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
