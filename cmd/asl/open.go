package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-log/internal/open"
)

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <file> [uuid]",
		Short: "Open a transcript in $EDITOR at an entry's line",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uuid := ""
			if len(args) == 2 {
				uuid = args[1]
			}
			return open.Entry(args[0], uuid)
		},
	}
}
