package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-log/internal/tui"
)

func browseCmd() *cobra.Command {
	var from, to, role string
	var limit int
	var thinking, tools bool

	cmd := &cobra.Command{
		Use:   "browse [file|dir]",
		Short: "Browse entries newest first with a live preview",
		Long:  `Opens a TUI listing loaded entries newest first. Type to filter; Enter copies the resume command.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			entries, err := a.loadTarget(a.loader(from, to), target)
			if err != nil {
				return err
			}
			return tui.Run(entries, tui.Options{
				Role:     role,
				Limit:    limit,
				Thinking: thinking,
				Tools:    tools,
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date")
	cmd.Flags().StringVar(&to, "to", "", "End date")
	cmd.Flags().StringVar(&role, "role", "", "Filter by entry type")
	cmd.Flags().IntVar(&limit, "limit", 500, "Max entries listed")
	cmd.Flags().BoolVar(&thinking, "thinking", false, "Show thinking blocks in preview")
	cmd.Flags().BoolVar(&tools, "tools", false, "Show tool calls in preview")

	return cmd
}
