package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/search"
)

func entry(uuid, session, text string) model.Entry {
	return &model.UserEntry{
		Base: model.Base{
			UUID:      uuid,
			SessionID: session,
			Cwd:       "/work",
			Timestamp: "2025-01-15T10:30:00Z",
		},
		Message: model.UserMessage{Role: "user", Content: model.StringContent(text)},
	}
}

func TestResumeCommand(t *testing.T) {
	r := search.Result{Entry: entry("u1", "abc", "hi"), SessionID: "abc"}
	if got, want := ResumeCommand(r), "cd /work && claude --resume abc"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := ResumeCommand(search.Result{Entry: &model.SummaryEntry{}}); got != "" {
		t.Errorf("summary resume = %q", got)
	}
}

func TestSessionEntries(t *testing.T) {
	entries := []model.Entry{entry("1", "a", "x"), entry("2", "b", "y"), entry("3", "a", "z")}
	got := sessionEntries(entries, search.Result{Entry: entries[0], SessionID: "a"})
	if len(got) != 2 || model.UUID(got[1]) != "3" {
		t.Errorf("got %d entries", len(got))
	}
}

func TestFormatResultLine(t *testing.T) {
	r := search.Result{Role: "user", Timestamp: "2025-01-15T10:30:00Z", SessionID: "abc", Snippet: "a >>>hit<<< b"}
	lines := formatResultLine(r, 60, true)
	if len(lines) != linesPerItem {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "01-15 10:30") || !strings.Contains(lines[0], "abc") {
		t.Errorf("line1 = %q", lines[0])
	}
	if strings.Contains(lines[1], ">>>") || !strings.Contains(lines[1], "a hit b") {
		t.Errorf("line2 = %q", lines[1])
	}
}

func TestSearchFlow(t *testing.T) {
	entries := []model.Entry{entry("1", "a", "alpha"), entry("2", "a", "beta")}
	m := initialModel(entries, Options{})

	msg := m.doSearch("beta")()
	m.query = "beta"
	next, _ := m.Update(msg)
	b := next.(browser)
	if len(b.results) != 1 || b.results[0].UUID != "2" {
		t.Fatalf("results = %+v", b.results)
	}

	next, _ = b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	b = next.(browser)
	if b.selected == nil || b.selected.UUID != "2" || !b.quitting {
		t.Errorf("enter did not select: %+v", b.selected)
	}
}
