package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-log/internal/config"
	"github.com/Zuo-Peng/ai-session-log/internal/scan"
)

func projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List project directories and their transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			projects, err := scan.Projects(cfg.ProjectsRoot)
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Printf("%s\t%d\t%s\t%s\n",
					p.Name,
					p.Files,
					p.Updated.Local().Format(time.DateTime),
					p.Dir,
				)
			}
			return nil
		},
	}
}
