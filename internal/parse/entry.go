package parse

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
)

// Entry parses one transcript line. Errors are *SyntaxError, ErrNotObject,
// a wrapped ErrUnrecognizedType or a *ValidationError. Nested content never
// fails the entry.
func (p *Parser) Entry(raw []byte) (model.Entry, error) {
	if !json.Valid(raw) {
		var v any
		return nil, &SyntaxError{Err: json.Unmarshal(raw, &v)}
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return nil, ErrNotObject
	}
	obj, err := decodeObject(raw, "")
	if err != nil {
		return nil, err
	}

	typ := gjson.GetBytes(raw, "type")
	if typ.Type != gjson.String || !model.EntryType(typ.Str).Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnrecognizedType, typeLabel(typ))
	}

	var e model.Entry
	switch model.EntryType(typ.Str) {
	case model.EntryUser:
		e, err = p.userEntry(obj)
	case model.EntryAssistant:
		e, err = p.assistantEntry(obj)
	case model.EntrySystem:
		e, err = systemEntry(obj)
	case model.EntrySummary:
		e, err = summaryEntry(obj)
	}
	if err != nil {
		return nil, err
	}
	p.metrics.EntryParsed(typ.Str)
	return e, nil
}

func typeLabel(v gjson.Result) string {
	if !v.Exists() {
		return "<missing>"
	}
	return v.Raw
}

func base(o object) (model.Base, error) {
	var b model.Base
	var err error
	if b.ParentUUID, err = o.optStr("parentUuid"); err != nil {
		return b, err
	}
	if b.IsSidechain, err = o.boolean("isSidechain"); err != nil {
		return b, err
	}
	if b.UserType, err = o.str("userType"); err != nil {
		return b, err
	}
	if b.Cwd, err = o.str("cwd"); err != nil {
		return b, err
	}
	if b.SessionID, err = o.str("sessionId"); err != nil {
		return b, err
	}
	if b.Version, err = o.str("version"); err != nil {
		return b, err
	}
	if b.UUID, err = o.str("uuid"); err != nil {
		return b, err
	}
	if b.Timestamp, err = o.str("timestamp"); err != nil {
		return b, err
	}
	if b.IsMeta, err = o.optBool("isMeta"); err != nil {
		return b, err
	}
	return b, nil
}

func (p *Parser) userEntry(o object) (*model.UserEntry, error) {
	b, err := base(o)
	if err != nil {
		return nil, err
	}
	msg, err := o.object("message")
	if err != nil {
		return nil, err
	}
	if err := msg.literal("role", "user"); err != nil {
		return nil, err
	}
	content, ok := msg.raw("content")
	if !ok {
		return nil, required(msg.at("content"))
	}
	e := &model.UserEntry{
		Base: b,
		Message: model.UserMessage{
			Role:    "user",
			Content: p.MessageContent(content),
		},
	}
	if r, ok := o.raw("toolUseResult"); ok {
		e.ToolUseResult = p.ToolUseResult(r)
	}
	return e, nil
}

func (p *Parser) assistantEntry(o object) (*model.AssistantEntry, error) {
	b, err := base(o)
	if err != nil {
		return nil, err
	}
	rawMsg, ok := o.raw("message")
	if !ok {
		return nil, required("message")
	}
	msg, err := decodeObject(rawMsg, "message")
	if err != nil {
		return nil, err
	}
	p.checkCanonical(rawMsg)

	m := model.AssistantMessage{Type: "message", Role: "assistant"}
	if m.ID, err = msg.str("id"); err != nil {
		return nil, err
	}
	if _, present := msg.raw("type"); present {
		if err := msg.literal("type", "message"); err != nil {
			return nil, err
		}
	}
	if err := msg.literal("role", "assistant"); err != nil {
		return nil, err
	}
	if m.Model, err = msg.str("model"); err != nil {
		return nil, err
	}
	content, ok := msg.raw("content")
	if !ok {
		return nil, required(msg.at("content"))
	}
	blocks, ok := p.contentList(content)
	if !ok {
		return nil, mistyped(msg.at("content"), "list")
	}
	m.Content = blocks

	stop, err := msg.optStr("stop_reason")
	if err != nil {
		return nil, err
	}
	if stop != nil {
		r := model.StopReason(*stop)
		m.StopReason = &r
	}
	if m.StopSequence, err = msg.optStr("stop_sequence"); err != nil {
		return nil, err
	}
	if u, ok := msg.raw("usage"); ok {
		m.Usage = p.Usage(u)
	}

	e := &model.AssistantEntry{Base: b, Message: m}
	if e.RequestID, err = o.optStr("requestId"); err != nil {
		return nil, err
	}
	return e, nil
}

// checkCanonical runs the strict message check for diagnostics only.
func (p *Parser) checkCanonical(raw []byte) {
	if p.schema == nil {
		return
	}
	if err := p.schema.Message(raw); err != nil {
		p.mismatches.Add(1)
		p.metrics.CanonicalMismatch()
		p.logger.Debug("assistant message differs from canonical shape", "err", err)
	}
}

func systemEntry(o object) (*model.SystemEntry, error) {
	b, err := base(o)
	if err != nil {
		return nil, err
	}
	e := &model.SystemEntry{Base: b}
	if e.Content, err = o.str("content"); err != nil {
		return nil, err
	}
	if e.Level, err = o.optStr("level"); err != nil {
		return nil, err
	}
	return e, nil
}

func summaryEntry(o object) (*model.SummaryEntry, error) {
	var e model.SummaryEntry
	var err error
	if e.Summary, err = o.str("summary"); err != nil {
		return nil, err
	}
	if e.LeafUUID, err = o.str("leafUuid"); err != nil {
		return nil, err
	}
	if e.Cwd, err = o.optStr("cwd"); err != nil {
		return nil, err
	}
	return &e, nil
}
