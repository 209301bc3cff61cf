package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-log/internal/render"
)

func exportCmd() *cobra.Command {
	var from, to, output string

	cmd := &cobra.Command{
		Use:   "export [file|dir]",
		Short: "Write normalized, sanitized entries as JSONL",
		Long:  "Parses transcripts and writes one normalized entry per line. Without an argument every project is exported.",
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

			var w io.Writer = os.Stdout
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := render.WriteJSONL(w, entries); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Exported %d entries from %d sessions.\n", len(entries), sessionCount(entries))
			a.reportSkipped()
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date")
	cmd.Flags().StringVar(&to, "to", "", "End date")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}
