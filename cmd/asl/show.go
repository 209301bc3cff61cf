package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/render"
	"github.com/Zuo-Peng/ai-session-log/internal/transcript"
)

func showCmd() *cobra.Command {
	var from, to, thread, hit, query string
	var context, width int
	var thinking, tools, markdown, plain bool

	cmd := &cobra.Command{
		Use:   "show <file|dir>",
		Short: "Render a transcript in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.loadTarget(a.loader(from, to), args[0])
			if err != nil {
				return err
			}
			if thread != "" {
				entries = transcript.NewIndex(entries).Chain(thread)
				if len(entries) == 0 {
					return fmt.Errorf("entry not found: %s", thread)
				}
			}

			color := isTerminal() && !plain
			if width == 0 {
				width = a.cfg.Width
				if color {
					width = min(width, terminalWidth(width))
				}
			}
			if !cmd.Flags().Changed("markdown") {
				markdown = a.cfg.Markdown
			}
			if hit == "" && context == 0 {
				context = -1
			}

			out, _ := render.New(render.Options{
				Width:    width,
				Color:    color,
				Markdown: markdown,
				Query:    query,
				HitUUID:  hit,
				Context:  context,
				Thinking: thinking,
				Tools:    tools,
			}).Entries(entries)
			fmt.Print(out)
			a.reportSkipped()
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", `Start date ("2025-01-15", "yesterday", "3 days ago")`)
	cmd.Flags().StringVar(&to, "to", "", "End date")
	cmd.Flags().StringVar(&thread, "thread", "", "Show only the chain of entries leading to this uuid")
	cmd.Flags().StringVar(&hit, "hit", "", "Entry uuid to mark")
	cmd.Flags().IntVar(&context, "context", 0, "Entries before/after --hit (0 = 10)")
	cmd.Flags().StringVar(&query, "query", "", "Terms to highlight")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = config or terminal)")
	cmd.Flags().BoolVar(&thinking, "thinking", false, "Include thinking blocks")
	cmd.Flags().BoolVar(&tools, "tools", false, "Include tool calls and results")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render text as markdown")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable colors")

	return cmd
}

// sessionCount counts distinct session ids.
func sessionCount(entries []model.Entry) int {
	seen := make(map[string]bool)
	for _, e := range entries {
		if b := model.BaseOf(e); b != nil {
			seen[b.SessionID] = true
		}
	}
	return len(seen)
}
