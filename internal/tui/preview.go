package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/render"
	"github.com/Zuo-Peng/ai-session-log/internal/search"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	key     string
	content string
	hitLine int
}

type previewOptions struct {
	query    string
	width    int
	thinking bool
	tools    bool
}

// loadPreviewCmd renders the session around r asynchronously.
func loadPreviewCmd(entries []model.Entry, r search.Result, o previewOptions) tea.Cmd {
	key := previewKey(r, o)
	return func() tea.Msg {
		rd := render.New(render.Options{
			Width:    o.width,
			Color:    true,
			Query:    o.query,
			HitUUID:  r.UUID,
			Context:  -1,
			Thinking: o.thinking,
			Tools:    o.tools,
		})
		content, hitLine := rd.Entries(sessionEntries(entries, r))
		return previewRenderedMsg{key: key, content: content, hitLine: hitLine}
	}
}

// sessionEntries returns the entries sharing r's session, or just r's entry
// when it has no session (summaries).
func sessionEntries(entries []model.Entry, r search.Result) []model.Entry {
	if r.SessionID == "" {
		return []model.Entry{r.Entry}
	}
	var out []model.Entry
	for _, e := range entries {
		if b := model.BaseOf(e); b != nil && b.SessionID == r.SessionID {
			out = append(out, e)
		}
	}
	return out
}

// newViewport creates a new viewport model with the given dimensions.
func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = stylePanelBorder
	return vp
}
