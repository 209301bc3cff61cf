package schema

import (
	"testing"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
)

func TestCanonicalBlocks(t *testing.T) {
	var c Canonical

	if _, err := c.TextBlock([]byte(`{"type":"text","text":"a","citations":null}`)); err != nil {
		t.Errorf("text: %v", err)
	}
	if _, err := c.TextBlock([]byte(`{"type":"text","text":"a","cache_control":{}}`)); err == nil {
		t.Error("text with unknown field should fail")
	}
	if _, err := c.ToolUseBlock([]byte(`{"type":"tool_use","id":"1","name":"n"}`)); err == nil {
		t.Error("tool_use without input should fail")
	}
	if _, err := c.ThinkingBlock([]byte(`{"type":"thinking","thinking":"x"}`)); err == nil {
		t.Error("thinking without signature should fail")
	}
	if _, err := c.ThinkingBlock([]byte(`{"type":"text","thinking":"x","signature":"s"}`)); err == nil {
		t.Error("wrong type should fail")
	}
}

func TestCanonicalMessage(t *testing.T) {
	var c Canonical
	ok := `{"id":"m","type":"message","role":"assistant","model":"x","content":[{"type":"text","text":"hi"}],"stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":1,"output_tokens":1}}`
	if err := c.Message([]byte(ok)); err != nil {
		t.Errorf("valid message: %v", err)
	}

	bad := []string{
		`{"id":"m","type":"message","role":"assistant","model":"x","content":[]}`,
		`{"id":"m","type":"message","role":"user","model":"x","content":[],"usage":{"input_tokens":1,"output_tokens":1}}`,
		`{"id":"m","type":"message","role":"assistant","model":"x","content":[{"type":"image"}],"usage":{"input_tokens":1,"output_tokens":1}}`,
	}
	for _, raw := range bad {
		if err := c.Message([]byte(raw)); err == nil {
			t.Errorf("%s: want error", raw)
		}
	}
}

func TestUsageConversion(t *testing.T) {
	in, out := 10, 4
	m := model.Usage{InputTokens: &in, OutputTokens: &out}

	u, ok := FromModel(m)
	if !ok {
		t.Fatal("FromModel: want ok")
	}
	if u.InputTokens != 10 || u.OutputTokens != 4 {
		t.Errorf("got %+v", u)
	}
	back := u.Model()
	if *back.InputTokens != 10 || *back.OutputTokens != 4 {
		t.Errorf("Model(): %+v", back)
	}

	if _, ok := FromModel(model.Usage{InputTokens: &in}); ok {
		t.Error("FromModel without output tokens: want !ok")
	}

	if _, err := (Canonical{}).Usage([]byte(`{"input_tokens":-1,"output_tokens":0}`)); err == nil {
		t.Error("negative usage should fail")
	}
}
