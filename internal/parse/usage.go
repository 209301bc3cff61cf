package parse

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
)

// Usage normalizes a token-usage value. The canonical shape is tried
// first, then the optional-field shape. Anything else yields nil.
func (p *Parser) Usage(raw json.RawMessage) *model.Usage {
	if isNull(raw) {
		return nil
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return p.usageFailure("not an object")
	}
	if p.schema != nil {
		if u, err := p.schema.Usage(raw); err == nil {
			return &u
		}
	}
	var u model.Usage
	if err := json.Unmarshal(raw, &u); err != nil {
		return p.usageFailure(err.Error())
	}
	for _, n := range []*int{u.InputTokens, u.OutputTokens, u.CacheCreationInputTokens, u.CacheReadInputTokens} {
		if n != nil && *n < 0 {
			return p.usageFailure("negative token count")
		}
	}
	return &u
}

func (p *Parser) usageFailure(reason string) *model.Usage {
	p.logger.Debug("usage dropped", "reason", reason)
	p.metrics.UsageFailure()
	return nil
}
