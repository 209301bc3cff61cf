package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"2025-01-01T10:00:00Z", true, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2025-01-01T10:00:00.5Z", true, time.Date(2025, 1, 1, 10, 0, 0, 5e8, time.UTC)},
		{"2025-01-01T10:00:00", true, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2025-01-01T12:00:00+02:00", true, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
	}
	for _, tc := range cases {
		got, ok := ParseTimestamp(tc.in)
		if ok != tc.ok || !got.Equal(tc.want) {
			t.Errorf("ParseTimestamp(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestWallClock(t *testing.T) {
	ts, _ := ParseTimestamp("2025-01-01T12:00:00+02:00")
	w := WallClock(ts)
	if w.Hour() != 12 || w.Location() != time.UTC {
		t.Errorf("WallClock = %v", w)
	}
}

func TestExtractText(t *testing.T) {
	c := BlockContent([]ContentBlock{
		TextBlock{Text: "one"},
		ThinkingBlock{Thinking: "hidden"},
		ToolUseBlock{ID: "t", Name: "Bash"},
		TextBlock{Text: "two"},
	})
	if got := ExtractText(c); got != "one\ntwo" {
		t.Errorf("ExtractText = %q", got)
	}
	if got := ExtractText(StringContent("plain")); got != "plain" {
		t.Errorf("ExtractText(string) = %q", got)
	}
}

func TestMarshalShapes(t *testing.T) {
	parent := "p1"
	e := &UserEntry{
		Base: Base{ParentUUID: &parent, UUID: "u1", Timestamp: "2025-01-01T00:00:00Z"},
		Message: UserMessage{Role: "user", Content: BlockContent([]ContentBlock{
			ToolResultBlock{ToolUseID: "t1", Content: ToolResultContent{Text: "ok"}},
		})},
		ToolUseResult: TextResult("done"),
	}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got["type"] != "user" || got["parentUuid"] != "p1" || got["toolUseResult"] != "done" {
		t.Errorf("unexpected shape: %s", b)
	}
	content := got["message"].(map[string]any)["content"].([]any)
	block := content[0].(map[string]any)
	if block["type"] != "tool_result" || block["content"] != "ok" {
		t.Errorf("unexpected block: %v", block)
	}

	s, _ := json.Marshal(&SummaryEntry{Summary: "s", LeafUUID: "l"})
	if string(s) != `{"type":"summary","summary":"s","leafUuid":"l"}` {
		t.Errorf("summary = %s", s)
	}
}
