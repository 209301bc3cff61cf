// Package telemetry defines the counters recorded while loading transcripts.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/Zuo-Peng/ai-session-log"

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	linesRead           metric.Int64Counter
	entriesParsed       metric.Int64Counter
	linesSkipped        metric.Int64Counter
	contentFallbacks    metric.Int64Counter
	usageFailures       metric.Int64Counter
	canonicalMismatches metric.Int64Counter
	cacheLookups        metric.Int64Counter
}

// New registers the counters on mp.
func New(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)
	var m Metrics
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.linesRead, "asl.lines.read", "Non-blank transcript lines read"},
		{&m.entriesParsed, "asl.entries.parsed", "Entries produced by the parser"},
		{&m.linesSkipped, "asl.lines.skipped", "Lines skipped, by reason"},
		{&m.contentFallbacks, "asl.content.fallbacks", "Content items degraded to text"},
		{&m.usageFailures, "asl.usage.failures", "Usage objects that could not be normalized"},
		{&m.canonicalMismatches, "asl.canonical.mismatches", "Assistant messages not matching the canonical shape"},
		{&m.cacheLookups, "asl.cache.lookups", "Cache lookups, by result"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
	}
	return &m, nil
}

// Global returns counters bound to the global meter provider, which is a
// no-op unless the process installs one.
func Global() *Metrics {
	m, err := New(otel.GetMeterProvider())
	if err != nil {
		return nil
	}
	return m
}

func (m *Metrics) LineRead() {
	if m != nil {
		m.linesRead.Add(context.Background(), 1)
	}
}

func (m *Metrics) EntryParsed(kind string) {
	if m != nil {
		m.entriesParsed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("type", kind)))
	}
}

func (m *Metrics) LineSkipped(reason string) {
	if m != nil {
		m.linesSkipped.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
	}
}

func (m *Metrics) ContentFallback(blockType string) {
	if m != nil {
		m.contentFallbacks.Add(context.Background(), 1, metric.WithAttributes(attribute.String("type", blockType)))
	}
}

func (m *Metrics) UsageFailure() {
	if m != nil {
		m.usageFailures.Add(context.Background(), 1)
	}
}

func (m *Metrics) CanonicalMismatch() {
	if m != nil {
		m.canonicalMismatches.Add(context.Background(), 1)
	}
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", result)))
}
