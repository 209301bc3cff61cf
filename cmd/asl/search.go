package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-log/internal/search"
	"github.com/Zuo-Peng/ai-session-log/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorGreen   = "\033[1;32m"
	sColorDim     = "\033[2m"
)

func colorizeRole(role string) string {
	switch role {
	case "user":
		return sColorBlue + role + sColorReset
	case "assistant":
		return sColorGreen + role + sColorReset
	default:
		return role
	}
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd() *cobra.Command {
	var role, from, to string
	var limit int
	var perSession bool

	cmd := &cobra.Command{
		Use:   "search <query> [file|dir]",
		Short: "Search entry text across transcripts",
		Long: `Search entry text. Every term must match. On a terminal an interactive
browser opens; otherwise output is TSV for fzf integration:
  sessionId, uuid, timestamp, role, snippet`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			target := ""
			if len(args) == 2 {
				target = args[1]
			}
			entries, err := a.loadTarget(a.loader(from, to), target)
			if err != nil {
				return err
			}

			if isTerminal() {
				return tui.Run(entries, tui.Options{Query: args[0], Role: role, Limit: limit})
			}

			results := search.Search(entries, search.Options{
				Query:      args[0],
				Role:       role,
				Limit:      limit,
				PerSession: perSession,
			})
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}
			for _, r := range results {
				snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
				// first two fields stay plain for fzf {1} {2}
				fmt.Printf("%s\t%s\t%s%s%s\t%s\t%s\n",
					r.SessionID,
					r.UUID,
					sColorDim, r.Timestamp, sColorReset,
					colorizeRole(r.Role),
					colorizeSnippet(snippet),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Filter by entry type (user/assistant/system/summary)")
	cmd.Flags().StringVar(&from, "from", "", "Start date")
	cmd.Flags().StringVar(&to, "to", "", "End date")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	cmd.Flags().BoolVar(&perSession, "per-session", false, "Only the best hit per session")

	return cmd
}
