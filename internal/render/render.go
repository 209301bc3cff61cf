package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/sanitize"
	"github.com/Zuo-Peng/ai-session-log/internal/schema"
)

const (
	colorReset   = "\033[0m"
	colorUser    = "\033[1;34m" // bold blue
	colorAssist  = "\033[1;32m" // bold green
	colorThink   = "\033[2;35m" // dim magenta for thinking
	colorTool    = "\033[36m"
	colorSystem  = "\033[33m"
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

const maxResultLines = 20

type Options struct {
	Width    int    // wrap width (0 = no wrap)
	Color    bool   // emit ANSI colors
	Markdown bool   // render text blocks as markdown
	Query    string // terms to highlight
	HitUUID  string // entry to mark
	Context  int    // entries before/after the hit (0 = 10, <0 = all)
	Thinking bool   // include thinking blocks
	Tools    bool   // include tool calls and results
}

type Renderer struct {
	opts Options
	md   *glamour.TermRenderer
}

func New(opts Options) *Renderer {
	r := &Renderer{opts: opts}
	if opts.Markdown && opts.Color {
		wrap := opts.Width
		if wrap <= 0 {
			wrap = 100
		}
		md, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrap))
		if err == nil {
			r.md = md
		}
	}
	return r
}

// Entries renders a conversation and returns the content and the 0-based
// line of the hit entry header (-1 if no hit).
func (r *Renderer) Entries(entries []model.Entry) (string, int) {
	start, end := 0, len(entries)
	hitIdx := -1
	if r.opts.HitUUID != "" {
		for i, e := range entries {
			if model.UUID(e) == r.opts.HitUUID && model.BaseOf(e) != nil {
				hitIdx = i
				break
			}
		}
	}
	if hitIdx >= 0 && r.opts.Context >= 0 {
		ctx := r.opts.Context
		if ctx == 0 {
			ctx = 10
		}
		start = max(0, hitIdx-ctx)
		end = min(len(entries), hitIdx+ctx+1)
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	writeLine := func(s string) {
		for _, wl := range wrapLine(s, r.opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	if start > 0 {
		writeLine(r.paint(colorDim, fmt.Sprintf("... (%d entries before) ...", start)))
	}
	for i := start; i < end; i++ {
		lines := r.Entry(entries[i], i == hitIdx)
		if len(lines) == 0 {
			continue
		}
		if i == hitIdx {
			hitLine = lineCount
		}
		for _, l := range lines {
			writeLine(l)
		}
		writeLine("")
	}
	if after := len(entries) - end; after > 0 {
		writeLine(r.paint(colorDim, fmt.Sprintf("... (%d entries after) ...", after)))
	}
	if lineCount == 0 {
		return "(empty transcript)\n", -1
	}
	return b.String(), hitLine
}

// Entry renders one entry as unwrapped lines. Every free-text field is
// sanitized first.
func (r *Renderer) Entry(e model.Entry, hit bool) []string {
	var lines []string
	switch v := e.(type) {
	case *model.UserEntry:
		lines = append(lines, r.header("USER", colorUser, &v.Base, hit))
		if v.Message.Content.IsList() {
			lines = append(lines, r.blocks(v.Message.Content.Blocks)...)
		} else {
			lines = append(lines, r.text(v.Message.Content.Text)...)
		}
		if r.opts.Tools && v.ToolUseResult != nil {
			lines = append(lines, r.indent(r.paint(colorDim, DescribeResult(v.ToolUseResult)))...)
		}
	case *model.AssistantEntry:
		lines = append(lines, r.header("ASST", colorAssist, &v.Base, hit))
		lines = append(lines, r.blocks(v.Message.Content)...)
		if v.Message.Usage != nil {
			if u, ok := schema.FromModel(*v.Message.Usage); ok {
				lines = append(lines, r.indent(r.paint(colorDim, fmt.Sprintf("tokens in=%d out=%d", u.InputTokens, u.OutputTokens)))...)
			}
		}
	case *model.SystemEntry:
		label := "SYS"
		if v.Level != nil && *v.Level != "" {
			label = "SYS:" + strings.ToUpper(sanitize.String(*v.Level))
		}
		lines = append(lines, r.header(label, colorSystem, &v.Base, hit))
		lines = append(lines, r.indent(r.highlight(sanitize.String(v.Content)))...)
	case *model.SummaryEntry:
		lines = append(lines, r.paint(colorDim, "SUMMARY > ")+r.highlight(sanitize.String(v.Summary)))
	}
	return lines
}

func (r *Renderer) header(label, color string, b *model.Base, hit bool) string {
	ts := sanitize.String(b.Timestamp)
	side := ""
	if b.IsSidechain {
		side = " [sidechain]"
	}
	if hit {
		return r.paint(colorHit, fmt.Sprintf(">> %s > %s%s <<", label, ts, side))
	}
	return r.paint(color, label+" >") + " " + r.paint(colorDim, ts+side)
}

func (r *Renderer) blocks(blocks []model.ContentBlock) []string {
	var lines []string
	for _, blk := range blocks {
		switch v := blk.(type) {
		case model.TextBlock:
			lines = append(lines, r.text(v.Text)...)
		case model.ThinkingBlock:
			if r.opts.Thinking {
				lines = append(lines, r.indent(r.paint(colorThink, "THINK"))...)
				lines = append(lines, r.indent(r.paint(colorDim, sanitize.String(v.Thinking)))...)
			}
		case model.ToolUseBlock:
			if r.opts.Tools {
				lines = append(lines, r.indent(r.paint(colorTool, "⚙ "+sanitize.String(v.Name)))...)
				lines = append(lines, r.indent(r.json(v.Input))...)
			}
		case model.ToolResultBlock:
			if r.opts.Tools {
				lines = append(lines, r.toolResult(v)...)
			}
		case model.ImageBlock:
			lines = append(lines, r.indent(r.paint(colorDim, fmt.Sprintf("[image %s, %d bytes base64]",
				sanitize.String(v.Source.MediaType), len(v.Source.Data))))...)
		}
	}
	return lines
}

func (r *Renderer) text(s string) []string {
	s = sanitize.String(s)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if r.md != nil {
		if out, err := r.md.Render(s); err == nil {
			return strings.Split(strings.TrimRight(out, "\n"), "\n")
		}
	}
	return r.indent(r.highlight(s))
}

func (r *Renderer) toolResult(v model.ToolResultBlock) []string {
	color := colorTool
	if v.IsError != nil && *v.IsError {
		color = colorBoldRed
	}
	lines := r.indent(r.paint(color, "↳ result "+sanitize.String(v.ToolUseID)))
	body := sanitize.String(ToolResultText(v.Content))
	parts := strings.Split(body, "\n")
	if len(parts) > maxResultLines {
		parts = append(parts[:maxResultLines], fmt.Sprintf("... (%d more lines)", len(parts)-maxResultLines))
	}
	return append(lines, r.indent(r.paint(colorDim, strings.Join(parts, "\n")))...)
}

func (r *Renderer) json(v any) []string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil
	}
	src := sanitize.String(string(b))
	if r.opts.Color {
		var buf bytes.Buffer
		if err := quick.Highlight(&buf, src, "json", "terminal256", "monokai"); err == nil {
			src = strings.TrimRight(buf.String(), "\n")
		}
	}
	return strings.Split(src, "\n")
}

func (r *Renderer) indent(s string) []string {
	return strings.Split(indentLines(s, "  "), "\n")
}

func (r *Renderer) highlight(s string) string {
	if !r.opts.Color {
		return s
	}
	return highlightKeywords(s, r.opts.Query)
}

func (r *Renderer) paint(color, s string) string {
	if !r.opts.Color {
		return s
	}
	return color + s + colorReset
}

// ToolResultText flattens tool-result content: text items are joined,
// other items are shown as compact JSON.
func ToolResultText(c model.ToolResultContent) string {
	if !c.IsList() {
		return c.Text
	}
	var parts []string
	for _, item := range c.Items {
		if t, ok := item["text"].(string); ok {
			parts = append(parts, t)
			continue
		}
		if b, err := json.Marshal(item); err == nil {
			parts = append(parts, string(b))
		}
	}
	return strings.Join(parts, "\n")
}

// DescribeResult summarizes a tool-use result on one line.
func DescribeResult(r model.ToolUseResult) string {
	switch v := r.(type) {
	case model.TextResult:
		return "result: " + firstLine(sanitize.String(string(v)))
	case model.TodoList:
		return fmt.Sprintf("result: %d todos", len(v))
	case model.FileReadResult:
		return fmt.Sprintf("result: read %s (%d lines)", sanitize.String(v.File.FilePath), v.File.NumLines)
	case model.CommandResult:
		s := fmt.Sprintf("result: command, %d bytes stdout, %d bytes stderr", len(v.Stdout), len(v.Stderr))
		if v.Interrupted {
			s += ", interrupted"
		}
		return s
	case model.TodoResult:
		return fmt.Sprintf("result: todos %d -> %d", len(v.OldTodos), len(v.NewTodos))
	case model.EditResult:
		return "result: edit"
	case model.ContentResult:
		return fmt.Sprintf("result: %d content blocks", len(v))
	case model.RawResult:
		return "result: " + firstLine(sanitize.String(string(v)))
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " ..."
	}
	if len(s) > 120 {
		s = ansi.Truncate(s, 120, "...")
	}
	return s
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	for _, term := range strings.Fields(query) {
		lower := strings.ToLower(term)
		i := 0
		for i < len(text) {
			idx := strings.Index(strings.ToLower(text[i:]), lower)
			if idx < 0 {
				break
			}
			pos := i + idx
			orig := text[pos : pos+len(term)]
			replacement := colorBoldRed + orig + colorReset
			text = text[:pos] + replacement + text[pos+len(term):]
			i = pos + len(replacement)
		}
	}
	return text
}

// indentLines prepends each line of text with the given prefix.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a line into lines of at most maxWidth visible columns,
// ignoring ANSI escape sequences when measuring.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 || ansi.StringWidth(line) <= maxWidth {
		return []string{line}
	}
	return strings.Split(ansi.Hardwrap(line, maxWidth, true), "\n")
}
