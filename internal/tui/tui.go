// Package tui is an interactive browser over loaded transcript entries.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/search"
)

const debounceDelay = 200 * time.Millisecond

type Options struct {
	Query    string
	Role     string
	Limit    int
	Thinking bool
	Tools    bool
}

type searchResultMsg struct {
	query   string
	results []search.Result
}

type debounceTickMsg struct {
	query string
}

type browser struct {
	entries     []model.Entry
	opts        Options
	query       string
	results     []search.Result
	cursor      int
	listOffset  int
	filterInput textinput.Model
	preview     viewport.Model
	previewKey  string
	width       int
	height      int
	ready       bool
	quitting    bool
	selected    *search.Result
}

func initialModel(entries []model.Entry, opts Options) browser {
	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Focus()
	ti.SetValue(opts.Query)
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	return browser{
		entries:     entries,
		opts:        opts,
		query:       opts.Query,
		filterInput: ti,
		preview:     viewport.New(0, 0),
	}
}

// Run starts the browser and blocks until it exits. If the user selects an
// entry, its resume command is copied to the clipboard.
func Run(entries []model.Entry, opts Options) error {
	p := tea.NewProgram(initialModel(entries, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(browser)
	if fm.selected == nil {
		return nil
	}
	cmd := ResumeCommand(*fm.selected)
	if cmd == "" {
		return nil
	}
	if err := clipboard.WriteAll(cmd); err != nil {
		fmt.Printf("%s\n", cmd)
		return nil
	}
	fmt.Printf("Copied to clipboard: %s\n", cmd)
	return nil
}

// ResumeCommand builds the shell command that resumes r's session, prefixed
// with a cd into its working directory when known.
func ResumeCommand(r search.Result) string {
	if r.SessionID == "" {
		return ""
	}
	cmd := "claude --resume " + r.SessionID
	if b := model.BaseOf(r.Entry); b != nil && b.Cwd != "" {
		cmd = fmt.Sprintf("cd %s && %s", b.Cwd, cmd)
	}
	return cmd
}

func (m browser) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.doSearch(m.query))
}

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewKey = ""
		cmds = append(cmds, m.loadCurrentPreview())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if len(m.results) > 0 && m.cursor < len(m.results) {
				r := m.results[m.cursor]
				m.selected = &r
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.results)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Thinking):
			m.opts.Thinking = !m.opts.Thinking
			return m, m.loadCurrentPreview()

		case key.Matches(msg, keys.Tools):
			m.opts.Tools = !m.opts.Tools
			return m, m.loadCurrentPreview()

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		if q := m.filterInput.Value(); q != m.query {
			m.query = q
			cmds = append(cmds, scheduleDebouncedSearch(q))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		if !m.ready || len(m.results) == 0 {
			return m, nil
		}
		region, itemIdx := m.hitTest(msg.X, msg.Y)

		switch {
		case region == regionList && msg.Button == tea.MouseButtonWheelUp:
			if m.listOffset > 0 {
				m.listOffset--
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonWheelDown:
			maxOffset := max(0, len(m.results)-m.panelHeight()/linesPerItem)
			if m.listOffset < maxOffset {
				m.listOffset++
			}
			return m, nil

		case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			if itemIdx >= 0 && itemIdx < len(m.results) && m.cursor != itemIdx {
				m.cursor = itemIdx
				m.adjustListScroll(m.panelHeight())
				cmds = append(cmds, m.loadCurrentPreview())
			}
			return m, tea.Batch(cmds...)

		case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
			var vpCmd tea.Cmd
			m.preview, vpCmd = m.preview.Update(msg)
			return m, vpCmd
		}
		return m, nil

	case debounceTickMsg:
		// only the latest keystroke triggers a search
		if msg.query == m.query {
			cmds = append(cmds, m.doSearch(msg.query))
		}
		return m, tea.Batch(cmds...)

	case searchResultMsg:
		if msg.query != m.query {
			return m, nil
		}
		m.results = msg.results
		m.cursor = 0
		m.listOffset = 0
		if len(m.results) == 0 {
			m.preview.SetContent("")
			m.previewKey = ""
			return m, nil
		}
		return m, m.loadCurrentPreview()

	case previewRenderedMsg:
		if msg.key == m.previewKey {
			return m, nil
		}
		if len(m.results) > 0 && m.cursor < len(m.results) &&
			msg.key != previewKey(m.results[m.cursor], m.previewOptions()) {
			return m, nil // stale
		}
		m.preview.SetContent(msg.content)
		if msg.hitLine > 0 {
			m.preview.SetYOffset(msg.hitLine)
		} else {
			m.preview.GotoTop()
		}
		m.previewKey = msg.key
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

func (m browser) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)
	return lipgloss.JoinVertical(lipgloss.Left, m.filterInput.View(), panels, m.statusBar())
}

func (m browser) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(20, m.width*40/100-4)
}

func (m browser) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	return max(20, m.width*60/100-4)
}

func (m browser) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// input row + status bar + borders
	return max(5, m.height-6)
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m browser) hitTest(x, y int) (mouseRegion, int) {
	contentYStart := 2 // input row + top border
	contentYEnd := contentYStart + m.panelHeight() - 1
	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	if x >= 1 && x <= lw {
		return regionList, m.listOffset + relY/linesPerItem
	}
	if x > lw+2 {
		return regionPreview, -1
	}
	return regionNone, -1
}

func (m browser) statusBar() string {
	flags := ""
	if m.opts.Thinking {
		flags += " +thinking"
	}
	if m.opts.Tools {
		flags += " +tools"
	}
	parts := []string{
		fmt.Sprintf("%d/%d entries%s", len(m.results), len(m.entries), flags),
		"up/dn navigate",
		"C-u/C-d preview",
		"C-t thinking",
		"C-o tools",
		"Enter copy resume cmd",
		"Esc quit",
	}
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m browser) doSearch(query string) tea.Cmd {
	entries := m.entries
	opts := search.Options{Query: query, Role: m.opts.Role, Limit: m.opts.Limit}
	return func() tea.Msg {
		return searchResultMsg{query: query, results: search.Search(entries, opts)}
	}
}

func scheduleDebouncedSearch(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

func (m browser) previewOptions() previewOptions {
	return previewOptions{
		query:    m.query,
		width:    m.previewWidth(),
		thinking: m.opts.Thinking,
		tools:    m.opts.Tools,
	}
}

func (m browser) loadCurrentPreview() tea.Cmd {
	if len(m.results) == 0 || m.cursor >= len(m.results) {
		return nil
	}
	r := m.results[m.cursor]
	o := m.previewOptions()
	if previewKey(r, o) == m.previewKey {
		return nil
	}
	return loadPreviewCmd(m.entries, r, o)
}

func previewKey(r search.Result, o previewOptions) string {
	return fmt.Sprintf("%d:%d:%t:%t:%s", r.Position, o.width, o.thinking, o.tools, o.query)
}
