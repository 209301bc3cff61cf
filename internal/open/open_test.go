package open

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLineOf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jsonl")
	body := strings.Join([]string{
		`{"type":"summary","summary":"s","leafUuid":"leaf"}`,
		``,
		`not json`,
		`{"type":"user","uuid":"u1"}`,
		`{"type":"assistant","uuid":"a1","parentUuid":"u1"}`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := map[string]int{"leaf": 1, "u1": 4, "a1": 5, "missing": 0}
	for uuid, want := range cases {
		got, err := LineOf(path, uuid)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("LineOf(%q) = %d, want %d", uuid, got, want)
		}
	}
}

func TestEditorCommand(t *testing.T) {
	cases := []struct {
		editor string
		want   []string
	}{
		{"nvim", []string{"nvim", "+7", "f"}},
		{"code", []string{"code", "--goto", "f:7"}},
		{"less", []string{"less", "+7", "f"}},
		{"nano", []string{"nano", "f"}},
	}
	for _, c := range cases {
		got := editorCommand(c.editor, "f", 7).Args
		if strings.Join(got, " ") != strings.Join(c.want, " ") {
			t.Errorf("%s: got %v, want %v", c.editor, got, c.want)
		}
	}
}
