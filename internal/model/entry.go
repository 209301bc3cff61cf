package model

import (
	"encoding/json"
	"time"
)

type EntryType string

const (
	EntryUser      EntryType = "user"
	EntryAssistant EntryType = "assistant"
	EntrySystem    EntryType = "system"
	EntrySummary   EntryType = "summary"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryUser, EntryAssistant, EntrySystem, EntrySummary:
		return true
	}
	return false
}

// Entry is one parsed transcript line.
type Entry interface {
	EntryType() EntryType
	// Time returns the parsed timestamp; ok is false for summaries and
	// for timestamps that are not ISO-8601.
	Time() (t time.Time, ok bool)
	isEntry()
}

// Base is shared by user, assistant and system entries.
type Base struct {
	ParentUUID  *string `json:"parentUuid"`
	IsSidechain bool    `json:"isSidechain"`
	UserType    string  `json:"userType"`
	Cwd         string  `json:"cwd"`
	SessionID   string  `json:"sessionId"`
	Version     string  `json:"version"`
	UUID        string  `json:"uuid"`
	Timestamp   string  `json:"timestamp"`
	IsMeta      *bool   `json:"isMeta,omitempty"`
}

func (b *Base) Time() (time.Time, bool) { return ParseTimestamp(b.Timestamp) }

type UserEntry struct {
	Base
	Message       UserMessage   `json:"message"`
	ToolUseResult ToolUseResult `json:"toolUseResult,omitempty"`
}

type AssistantEntry struct {
	Base
	Message   AssistantMessage `json:"message"`
	RequestID *string          `json:"requestId,omitempty"`
}

type SystemEntry struct {
	Base
	Content string  `json:"content"`
	Level   *string `json:"level,omitempty"`
}

// SummaryEntry has no base fields and is not part of any parent chain.
type SummaryEntry struct {
	Summary  string  `json:"summary"`
	LeafUUID string  `json:"leafUuid"`
	Cwd      *string `json:"cwd,omitempty"`
}

func (*UserEntry) EntryType() EntryType      { return EntryUser }
func (*AssistantEntry) EntryType() EntryType { return EntryAssistant }
func (*SystemEntry) EntryType() EntryType    { return EntrySystem }
func (*SummaryEntry) EntryType() EntryType   { return EntrySummary }

func (*SummaryEntry) Time() (time.Time, bool) { return time.Time{}, false }

func (*UserEntry) isEntry()      {}
func (*AssistantEntry) isEntry() {}
func (*SystemEntry) isEntry()    {}
func (*SummaryEntry) isEntry()   {}

// BaseOf returns the shared base of e, or nil for summaries.
func BaseOf(e Entry) *Base {
	switch v := e.(type) {
	case *UserEntry:
		return &v.Base
	case *AssistantEntry:
		return &v.Base
	case *SystemEntry:
		return &v.Base
	}
	return nil
}

// UUID returns the entry uuid; summaries report their leaf uuid.
func UUID(e Entry) string {
	if b := BaseOf(e); b != nil {
		return b.UUID
	}
	if s, ok := e.(*SummaryEntry); ok {
		return s.LeafUUID
	}
	return ""
}

// Entries marshal back to the transcript line shape, type field included.

func (e *UserEntry) MarshalJSON() ([]byte, error) {
	type plain UserEntry
	return json.Marshal(struct {
		Type EntryType `json:"type"`
		*plain
	}{EntryUser, (*plain)(e)})
}

func (e *AssistantEntry) MarshalJSON() ([]byte, error) {
	type plain AssistantEntry
	return json.Marshal(struct {
		Type EntryType `json:"type"`
		*plain
	}{EntryAssistant, (*plain)(e)})
}

func (e *SystemEntry) MarshalJSON() ([]byte, error) {
	type plain SystemEntry
	return json.Marshal(struct {
		Type EntryType `json:"type"`
		*plain
	}{EntrySystem, (*plain)(e)})
}

func (e *SummaryEntry) MarshalJSON() ([]byte, error) {
	type plain SummaryEntry
	return json.Marshal(struct {
		Type EntryType `json:"type"`
		*plain
	}{EntrySummary, (*plain)(e)})
}
