package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, projects root and cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			defer a.Close()

			fmt.Println("=== Config ===")
			if a.cfg.Path != "" {
				fmt.Printf("  File: %s\n", a.cfg.Path)
			} else {
				fmt.Println("  File: (none, using defaults)")
			}
			fmt.Printf("  Version: %s\n", version)

			fmt.Println("\n=== Roots ===")
			checkDir("Projects", a.cfg.ProjectsRoot)

			fmt.Println("\n=== File Scan ===")
			if n, err := countTranscripts(a.cfg.ProjectsRoot); err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  Transcript files: %d\n", n)
			}

			fmt.Println("\n=== Cache ===")
			fmt.Printf("  Path: %s\n", a.cfg.CachePath)
			if a.cache == nil {
				fmt.Println("  Status: DISABLED")
				return nil
			}
			schemaVer, libVer, err := a.cache.Versions()
			if err != nil {
				return fmt.Errorf("cache versions: %w", err)
			}
			stats, err := a.cache.Stats()
			if err != nil {
				return fmt.Errorf("cache stats: %w", err)
			}
			fmt.Printf("  Schema: %s  Library: %s\n", schemaVer, libVer)
			fmt.Printf("  %s\n", stats)
			if stats.Stale+stats.Missing == 0 {
				fmt.Println("  Status: OK")
			} else {
				fmt.Println("  Status: STALE (run 'asl cache warm' or 'asl cache prune')")
			}
			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
