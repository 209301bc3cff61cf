package transcript

import (
	"fmt"
	"log/slog"
	"sync"
)

type Reason string

const (
	ReasonDecode      Reason = "decode"
	ReasonNotObject   Reason = "not_object"
	ReasonUnknownType Reason = "unrecognized_type"
	ReasonValidation  Reason = "validation"
	ReasonPanic       Reason = "panic"
	ReasonRead        Reason = "read"
	ReasonOpen        Reason = "open"
)

// Diagnostic describes one skipped line, or one file that could not be
// opened during a directory load (Line is 0).
type Diagnostic struct {
	Path   string
	Line   int
	Reason Reason
	Err    error
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s | %s: %v", d.Path, d.Reason, d.Err)
	}
	return fmt.Sprintf("Line %d of %s | %s: %v", d.Line, d.Path, d.Reason, d.Err)
}

// Sink receives diagnostics. Implementations must be safe for concurrent
// use; directory loads report from several goroutines.
type Sink interface {
	Report(Diagnostic)
}

type SinkFunc func(Diagnostic)

func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// SlogSink logs each diagnostic at warn level.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Report(d Diagnostic) {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Warn("skipped transcript line",
		"path", d.Path,
		"line", d.Line,
		"reason", string(d.Reason),
		"err", d.Err,
	)
}

// Collector keeps diagnostics in memory.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.diags = append(c.diags, d)
	c.mu.Unlock()
}

func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// Count returns how many diagnostics carry reason r.
func (c *Collector) Count(r Reason) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.diags {
		if d.Reason == r {
			n++
		}
	}
	return n
}
