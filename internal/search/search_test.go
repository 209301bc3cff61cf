package search

import (
	"testing"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
)

func user(uuid, session, text string) model.Entry {
	return &model.UserEntry{
		Base:    model.Base{UUID: uuid, SessionID: session, Timestamp: "2025-01-01T00:00:00Z"},
		Message: model.UserMessage{Role: "user", Content: model.StringContent(text)},
	}
}

func TestSearch(t *testing.T) {
	entries := []model.Entry{
		user("1", "s1", "fix the parser please"),
		user("2", "s1", "parser parser everywhere"),
		user("3", "s2", "unrelated"),
		&model.SummaryEntry{Summary: "Parser refactor", LeafUUID: "2"},
	}

	rs := Search(entries, Options{Query: "parser"})
	if len(rs) != 3 {
		t.Fatalf("got %d results, want 3", len(rs))
	}
	if rs[0].UUID != "2" || rs[0].Hits != 2 {
		t.Errorf("best hit = %+v", rs[0])
	}
	// equal hits: newest (last in list) first
	if rs[1].Role != "summary" {
		t.Errorf("second = %+v", rs[1])
	}

	rs = Search(entries, Options{Query: "fix parser"})
	if len(rs) != 1 || rs[0].UUID != "1" {
		t.Errorf("AND query: %+v", rs)
	}

	rs = Search(entries, Options{Query: "parser", Role: "user", PerSession: true})
	if len(rs) != 1 || rs[0].SessionID != "s1" {
		t.Errorf("per session: %+v", rs)
	}
}

func TestMakeSnippet(t *testing.T) {
	got := makeSnippet("0123456789 needle 0123456789", "needle", 3)
	want := "...89 >>>needle<<< 01..."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
