package main

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/Zuo-Peng/ai-session-log/internal/cache"
	"github.com/Zuo-Peng/ai-session-log/internal/config"
	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/parse"
	"github.com/Zuo-Peng/ai-session-log/internal/scan"
	"github.com/Zuo-Peng/ai-session-log/internal/telemetry"
	"github.com/Zuo-Peng/ai-session-log/internal/transcript"
)

// app bundles what every command needs: config, logger and the optional
// cache.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *telemetry.Metrics
	cache   *cache.Manager
	parser  *parse.Parser
	skipped *transcript.Collector
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelWarn
	}
	if flagDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: telemetry.Global(),
		skipped: &transcript.Collector{},
	}
	a.parser = parse.New(parse.WithLogger(logger), parse.WithMetrics(a.metrics))

	if !cfg.NoCache && !flagNoCache {
		m, err := cache.Open(cfg.CachePath, cache.WithLibraryVersion(version), cache.WithLogger(logger))
		if err != nil {
			// the cache is an accelerator; run without it
			logger.Warn("cache unavailable", "path", cfg.CachePath, "err", err)
		} else {
			a.cache = m
		}
	}
	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

func (a *app) loader(from, to string) *transcript.Loader {
	opts := transcript.Options{
		From:    from,
		To:      to,
		Sink:    multiSink{transcript.SlogSink{Logger: a.logger}, a.skipped},
		Logger:  a.logger,
		Parser:  a.parser,
		Metrics: a.metrics,
		Workers: a.cfg.Workers,
	}
	// a nil *Manager must not become a non-nil interface
	if a.cache != nil {
		opts.Cache = a.cache
	}
	return transcript.New(opts)
}

// loadTarget loads a transcript file, a directory of transcripts, or, when
// target is empty, every project under the configured root.
func (a *app) loadTarget(l *transcript.Loader, target string) ([]model.Entry, error) {
	if target == "" {
		projects, err := scan.Projects(a.cfg.ProjectsRoot)
		if err != nil {
			return nil, fmt.Errorf("scan projects: %w", err)
		}
		var all []model.Entry
		for _, p := range projects {
			entries, err := l.LoadDirectory(p.Dir)
			if err != nil {
				return nil, err
			}
			all = append(all, entries...)
		}
		transcript.SortByTime(all)
		return all, nil
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return l.LoadDirectory(target)
	}
	return l.Load(target)
}

// reportSkipped prints a one-line tally of skipped lines to stderr.
func (a *app) reportSkipped() {
	if n := len(a.skipped.Diagnostics()); n > 0 {
		fmt.Fprintf(os.Stderr, "%d line(s) skipped\n", n)
	}
}

type multiSink []transcript.Sink

func (s multiSink) Report(d transcript.Diagnostic) {
	for _, k := range s {
		k.Report(d)
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}
