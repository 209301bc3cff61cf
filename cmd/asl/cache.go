package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/ai-session-log/internal/cache"
	"github.com/Zuo-Peng/ai-session-log/internal/scan"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the entry cache",
	}
	cmd.AddCommand(cacheStatusCmd(), cacheFilesCmd(), cacheWarmCmd(), cachePruneCmd(), cacheClearCmd())
	return cmd
}

// withCache runs fn against an open cache, failing when caching is off.
func withCache(fn func(a *app) error) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()
	if a.cache == nil {
		return errors.New("cache disabled")
	}
	return fn(a)
}

func cacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cache location, versions and freshness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(func(a *app) error {
				schemaVer, libVer, err := a.cache.Versions()
				if err != nil {
					return err
				}
				stats, err := a.cache.Stats()
				if err != nil {
					return err
				}
				fmt.Printf("Path:     %s\n", a.cfg.CachePath)
				fmt.Printf("Versions: schema=%s library=%s\n", schemaVer, libVer)
				fmt.Printf("Contents: %s\n", stats)
				if info, err := os.Stat(a.cfg.CachePath); err == nil {
					fmt.Printf("Size:     %.1f MB\n", float64(info.Size())/1024/1024)
				}
				return nil
			})
		},
	}
}

func cacheFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List cached transcripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(func(a *app) error {
				rows, err := a.cache.Files()
				if err != nil {
					return err
				}
				for _, r := range rows {
					fmt.Printf("%s\t%d\t%s\t%s\n", r.Path, r.EntryCount, r.Earliest, r.Latest)
				}
				return nil
			})
		},
	}
}

func cacheWarmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warm [dir]",
		Short: "Parse and cache every transcript (all projects by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(func(a *app) error {
				target := ""
				if len(args) == 1 {
					target = args[0]
				}
				loaded, added, after, err := warmCache(a, target)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Done. %d entries loaded, %d files newly cached. %s\n",
					loaded, added, after)
				a.reportSkipped()
				return nil
			})
		},
	}
}

// warmCache loads target through the cache and reports how many entries
// were loaded and how many files the cache gained.
func warmCache(a *app, target string) (loaded, added int, after cache.Stats, err error) {
	before, err := a.cache.Stats()
	if err != nil {
		return 0, 0, after, fmt.Errorf("cache stats: %w", err)
	}
	entries, err := a.loadTarget(a.loader("", ""), target)
	if err != nil {
		return 0, 0, after, err
	}
	after, err = a.cache.Stats()
	if err != nil {
		return 0, 0, after, fmt.Errorf("cache stats: %w", err)
	}
	return len(entries), after.Files - before.Files, after, nil
}

func cachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop cached transcripts whose files are gone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(func(a *app) error {
				n, err := a.cache.Prune()
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Pruned %d file(s).\n", n)
				return nil
			})
		},
	}
}

func cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [file]",
		Short: "Remove one file, or everything, from the cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(func(a *app) error {
				if len(args) == 1 {
					return a.cache.Remove(args[0])
				}
				if err := a.cache.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(os.Stderr, "Cache cleared.")
				return nil
			})
		},
	}
}

// countTranscripts counts transcript files under root, subagents excluded.
func countTranscripts(root string) (int, error) {
	files, err := scan.All(root)
	return len(files), err
}
