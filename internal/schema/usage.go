package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
)

// Usage is the canonical token-usage shape. Input and output counts are
// mandatory.
type Usage struct {
	InputTokens              int            `json:"input_tokens"`
	OutputTokens             int            `json:"output_tokens"`
	CacheCreationInputTokens *int           `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     *int           `json:"cache_read_input_tokens"`
	ServiceTier              *string        `json:"service_tier"`
	ServerToolUse            map[string]any `json:"server_tool_use"`
}

type usageWire struct {
	InputTokens              *int            `json:"input_tokens"`
	OutputTokens             *int            `json:"output_tokens"`
	CacheCreationInputTokens *int            `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     *int            `json:"cache_read_input_tokens"`
	CacheCreation            json.RawMessage `json:"cache_creation"`
	ServiceTier              *string         `json:"service_tier"`
	ServerToolUse            map[string]any  `json:"server_tool_use"`
}

var errNegative = errors.New("negative token count")

// Usage validates raw as a canonical usage object and converts it.
func (Canonical) Usage(raw []byte) (model.Usage, error) {
	var w usageWire
	if err := strict(raw, &w); err != nil {
		return model.Usage{}, err
	}
	if w.InputTokens == nil {
		return model.Usage{}, missing("input_tokens")
	}
	if w.OutputTokens == nil {
		return model.Usage{}, missing("output_tokens")
	}
	u := Usage{
		InputTokens:              *w.InputTokens,
		OutputTokens:             *w.OutputTokens,
		CacheCreationInputTokens: w.CacheCreationInputTokens,
		CacheReadInputTokens:     w.CacheReadInputTokens,
		ServiceTier:              w.ServiceTier,
		ServerToolUse:            w.ServerToolUse,
	}
	if err := u.validate(); err != nil {
		return model.Usage{}, err
	}
	return u.Model(), nil
}

func (u Usage) validate() error {
	for name, v := range map[string]*int{
		"input_tokens":                &u.InputTokens,
		"output_tokens":               &u.OutputTokens,
		"cache_creation_input_tokens": u.CacheCreationInputTokens,
		"cache_read_input_tokens":     u.CacheReadInputTokens,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s: %w", name, errNegative)
		}
	}
	return nil
}

// Model converts u to the transcript model's optional-field shape.
func (u Usage) Model() model.Usage {
	in, out := u.InputTokens, u.OutputTokens
	return model.Usage{
		InputTokens:              &in,
		OutputTokens:             &out,
		CacheCreationInputTokens: u.CacheCreationInputTokens,
		CacheReadInputTokens:     u.CacheReadInputTokens,
		ServiceTier:              u.ServiceTier,
		ServerToolUse:            u.ServerToolUse,
	}
}

// FromModel converts m to the canonical shape. ok is false unless both
// input and output token counts are present.
func FromModel(m model.Usage) (u Usage, ok bool) {
	if m.InputTokens == nil || m.OutputTokens == nil {
		return Usage{}, false
	}
	return Usage{
		InputTokens:              *m.InputTokens,
		OutputTokens:             *m.OutputTokens,
		CacheCreationInputTokens: m.CacheCreationInputTokens,
		CacheReadInputTokens:     m.CacheReadInputTokens,
		ServiceTier:              m.ServiceTier,
		ServerToolUse:            m.ServerToolUse,
	}, true
}
