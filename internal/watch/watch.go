// Package watch reloads transcripts as they are written.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/transcript"
)

const defaultDelay = 100 * time.Millisecond

// Event carries the freshly loaded entries of a changed transcript.
type Event struct {
	Path    string
	Entries []model.Entry
	Err     error
}

type Option func(*watcher)

// WithDelay sets how long a file must stay quiet before it is reloaded.
func WithDelay(d time.Duration) Option {
	return func(w *watcher) { w.delay = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *watcher) { w.logger = l }
}

type watcher struct {
	loader *transcript.Loader
	delay  time.Duration
	logger *slog.Logger
}

// Watch observes target (a transcript file or a directory of them) and sends
// one Event per changed file after writes settle. The channel is closed when
// ctx is done.
func Watch(ctx context.Context, target string, l *transcript.Loader, opts ...Option) (<-chan Event, error) {
	w := &watcher{loader: l, delay: defaultDelay, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(w)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	dir, only := target, ""
	if !info.IsDir() {
		dir, only = filepath.Dir(target), filepath.Clean(target)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	events := make(chan Event, 32)
	pending := make(chan string, 32)

	go func() {
		defer fw.Close()
		defer close(events)

		var mu sync.Mutex
		timers := make(map[string]*time.Timer)
		defer func() {
			mu.Lock()
			for _, t := range timers {
				t.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(ev.Name, ".jsonl") {
					continue
				}
				if only != "" && filepath.Clean(ev.Name) != only {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				path := ev.Name
				mu.Lock()
				if t, ok := timers[path]; ok {
					t.Stop()
				}
				timers[path] = time.AfterFunc(w.delay, func() {
					mu.Lock()
					delete(timers, path)
					mu.Unlock()
					select {
					case pending <- path:
					case <-ctx.Done():
					}
				})
				mu.Unlock()

			case path := <-pending:
				entries, err := w.loader.Load(path)
				if err != nil {
					w.logger.Warn("reload failed", "path", path, "err", err)
				} else {
					w.logger.Debug("reloaded", "path", path, "entries", len(entries))
				}
				select {
				case events <- Event{Path: path, Entries: entries, Err: err}:
				case <-ctx.Done():
					return
				}

			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error", "err", err)
			}
		}
	}()

	return events, nil
}
