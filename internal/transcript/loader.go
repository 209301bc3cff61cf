// Package transcript loads transcript files into entry lists.
package transcript

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Zuo-Peng/ai-session-log/internal/daterange"
	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/parse"
	"github.com/Zuo-Peng/ai-session-log/internal/scan"
	"github.com/Zuo-Peng/ai-session-log/internal/telemetry"
)

const maxLineSize = 64 * 1024 * 1024

// Cache is the store consulted before parsing and filled after. A false
// second return means the entry list is absent or stale.
type Cache interface {
	LoadCachedEntries(path string) ([]model.Entry, bool)
	LoadCachedEntriesFiltered(path string, from, to *time.Time) ([]model.Entry, bool)
	// SaveCachedEntries stores entries parsed from the content fp describes.
	SaveCachedEntries(path string, fp scan.Fingerprint, entries []model.Entry) error
}

type Options struct {
	Cache Cache
	// From and To are date expressions; see package daterange.
	From, To string
	Sink     Sink
	Logger   *slog.Logger
	Parser   *parse.Parser
	Metrics  *telemetry.Metrics
	// Workers bounds parallel file loads in LoadDirectory.
	Workers int
	Now     func() time.Time
}

type Loader struct {
	cache   Cache
	from    string
	to      string
	sink    Sink
	logger  *slog.Logger
	parser  *parse.Parser
	metrics *telemetry.Metrics
	workers int
	now     func() time.Time
}

func New(opts Options) *Loader {
	l := &Loader{
		cache:   opts.Cache,
		from:    opts.From,
		to:      opts.To,
		sink:    opts.Sink,
		logger:  opts.Logger,
		parser:  opts.Parser,
		metrics: opts.Metrics,
		workers: opts.Workers,
		now:     opts.Now,
	}
	if l.sink == nil {
		l.sink = Discard
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	if l.parser == nil {
		l.parser = parse.New(parse.WithLogger(l.logger), parse.WithMetrics(l.metrics))
	}
	if l.workers <= 0 {
		l.workers = runtime.GOMAXPROCS(0)
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Range resolves the configured from/to expressions against the clock.
func (l *Loader) Range() (daterange.Range, error) {
	return daterange.Parse(l.from, l.to, l.now())
}

// Load parses one transcript file. Bad lines are reported to the sink and
// skipped; only failing to open the file is an error.
func (l *Loader) Load(path string) ([]model.Entry, error) {
	rng, err := l.Range()
	if err != nil {
		return nil, err
	}
	return l.load(path, rng)
}

func (l *Loader) load(path string, rng daterange.Range) ([]model.Entry, error) {
	if entries, ok := l.fromCache(path, rng); ok {
		return entries, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	l.logger.Info("processing", "path", path)

	hr, err := scan.NewHashingReader(f)
	if err != nil {
		return nil, fmt.Errorf("stat transcript: %w", err)
	}

	var entries []model.Entry
	scanner := bufio.NewScanner(hr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		l.metrics.LineRead()

		e, reason, err := l.parseLine(line)
		if err != nil {
			l.report(Diagnostic{Path: path, Line: lineNum, Reason: reason, Err: err})
			continue
		}
		entries = append(entries, e)
	}
	readErr := scanner.Err()
	if readErr != nil {
		l.report(Diagnostic{Path: path, Line: lineNum + 1, Reason: ReasonRead, Err: readErr})
	}

	// a truncated read must not be cached as the whole file
	if l.cache != nil && readErr == nil {
		if err := l.cache.SaveCachedEntries(path, hr.Fingerprint(), entries); err != nil {
			l.logger.Warn("cache write failed", "path", path, "err", err)
		}
	}
	return Filter(entries, rng), nil
}

func (l *Loader) fromCache(path string, rng daterange.Range) ([]model.Entry, bool) {
	if l.cache == nil {
		return nil, false
	}
	var (
		entries []model.Entry
		ok      bool
	)
	if rng.IsZero() {
		entries, ok = l.cache.LoadCachedEntries(path)
	} else {
		entries, ok = l.cache.LoadCachedEntriesFiltered(path, rng.From, rng.To)
	}
	l.metrics.CacheLookup(ok)
	if ok {
		l.logger.Info("loading from cache", "path", path, "entries", len(entries))
	}
	return entries, ok
}

func (l *Loader) parseLine(line []byte) (e model.Entry, reason Reason, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, reason, err = nil, ReasonPanic, fmt.Errorf("unexpected error: %v", r)
		}
	}()
	e, err = l.parser.Entry(line)
	if err != nil {
		return nil, reasonOf(err), err
	}
	return e, "", nil
}

func reasonOf(err error) Reason {
	var syn *parse.SyntaxError
	var ve *parse.ValidationError
	switch {
	case errors.As(err, &syn):
		return ReasonDecode
	case errors.Is(err, parse.ErrNotObject):
		return ReasonNotObject
	case errors.Is(err, parse.ErrUnrecognizedType):
		return ReasonUnknownType
	case errors.As(err, &ve):
		return ReasonValidation
	}
	return ReasonPanic
}

func (l *Loader) report(d Diagnostic) {
	l.metrics.LineSkipped(string(d.Reason))
	l.sink.Report(d)
}

// LoadDirectory loads every transcript directly inside dir and returns the
// combined entries in timestamp order. Files that cannot be opened are
// reported to the sink and skipped.
func (l *Loader) LoadDirectory(dir string) ([]model.Entry, error) {
	rng, err := l.Range()
	if err != nil {
		return nil, err
	}
	files, err := scan.Transcripts(dir)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}

	results := make([][]model.Entry, len(files))
	var g errgroup.Group
	g.SetLimit(l.workers)
	for i, fi := range files {
		g.Go(func() error {
			entries, err := l.load(fi.Path, rng)
			if err != nil {
				l.report(Diagnostic{Path: fi.Path, Reason: ReasonOpen, Err: err})
				return nil
			}
			results[i] = entries
			return nil
		})
	}
	_ = g.Wait()

	var all []model.Entry
	for _, r := range results {
		all = append(all, r...)
	}
	SortByTime(all)
	return all, nil
}

// SortByTime orders entries by timestamp instant, stably. Entries without
// a parseable timestamp, summaries included, sort first.
func SortByTime(entries []model.Entry) {
	slices.SortStableFunc(entries, func(a, b model.Entry) int {
		ta, okA := a.Time()
		tb, okB := b.Time()
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return -1
		case !okB:
			return 1
		}
		return ta.Compare(tb)
	})
}

// Filter keeps the entries whose wall-clock timestamp lies in r. Summaries
// are always kept; other entries without a parseable timestamp are dropped
// when r is bounded.
func Filter(entries []model.Entry, r daterange.Range) []model.Entry {
	if r.IsZero() {
		return entries
	}
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		if e.EntryType() == model.EntrySummary {
			out = append(out, e)
			continue
		}
		t, ok := e.Time()
		if ok && r.Contains(t) {
			out = append(out, e)
		}
	}
	return out
}
