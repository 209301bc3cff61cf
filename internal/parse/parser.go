// Package parse turns raw transcript JSON into model values.
package parse

import (
	"log/slog"
	"sync/atomic"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/schema"
	"github.com/Zuo-Peng/ai-session-log/internal/telemetry"
)

// Schema is the strict validation tier tried before the permissive shapes.
type Schema interface {
	TextBlock(raw []byte) (model.TextBlock, error)
	ToolUseBlock(raw []byte) (model.ToolUseBlock, error)
	ThinkingBlock(raw []byte) (model.ThinkingBlock, error)
	Usage(raw []byte) (model.Usage, error)
	Message(raw []byte) error
}

// Parser is safe for concurrent use.
type Parser struct {
	schema  Schema
	logger  *slog.Logger
	metrics *telemetry.Metrics

	fallbacks  atomic.Int64
	mismatches atomic.Int64
}

type Option func(*Parser)

// WithSchema replaces the strict tier; nil disables it.
func WithSchema(s Schema) Option {
	return func(p *Parser) { p.schema = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Parser) { p.metrics = m }
}

func New(opts ...Option) *Parser {
	p := &Parser{
		schema: schema.Canonical{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// Fallbacks returns how many content items were degraded to text.
func (p *Parser) Fallbacks() int64 { return p.fallbacks.Load() }

// CanonicalMismatches returns how many assistant messages failed the
// strict message check.
func (p *Parser) CanonicalMismatches() int64 { return p.mismatches.Load() }
