package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-log/internal/render"
	"github.com/Zuo-Peng/ai-session-log/internal/watch"
)

func watchCmd() *cobra.Command {
	var from, to string
	var thinking, tools bool

	cmd := &cobra.Command{
		Use:   "watch <file|dir>",
		Short: "Print new entries as transcripts grow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			events, err := watch.Watch(ctx, args[0], a.loader(from, to), watch.WithLogger(a.logger))
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", args[0])

			rd := render.New(render.Options{
				Width:    a.cfg.Width,
				Color:    isTerminal(),
				Thinking: thinking,
				Tools:    tools,
				Context:  -1,
			})
			seen := make(map[string]int)
			for ev := range events {
				if ev.Err != nil {
					continue
				}
				// a shrunk file was rewritten; show it whole
				start := seen[ev.Path]
				if start > len(ev.Entries) {
					start = 0
				}
				seen[ev.Path] = len(ev.Entries)
				if start == len(ev.Entries) {
					continue
				}
				out, _ := rd.Entries(ev.Entries[start:])
				fmt.Printf("==> %s <==\n%s", ev.Path, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date")
	cmd.Flags().StringVar(&to, "to", "", "End date")
	cmd.Flags().BoolVar(&thinking, "thinking", false, "Include thinking blocks")
	cmd.Flags().BoolVar(&tools, "tools", false, "Include tool calls and results")

	return cmd
}
