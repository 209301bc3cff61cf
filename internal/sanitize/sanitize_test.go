package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// Generalized UTF-8 encodings of lone surrogates, as written by WTF-8 encoders.
const (
	highD83D = "\xed\xa0\xbd"
	lowDE00  = "\xed\xb8\x80"
	lowDEAD  = "\xed\xba\xad"
)

func TestString_CleanInputUnchanged(t *testing.T) {
	cases := []string{
		"",
		"Hello, world!",
		"Hello 👋 World 🌍 with various unicode: café, naïve, résumé",
		"tabs\tand\nnewlines",
	}
	for _, in := range cases {
		if got := String(in); got != in {
			t.Errorf("String(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestString_SurrogatesReplaced(t *testing.T) {
	in := "Text with surrogate: " + highD83D + " and more text"
	got := String(in)

	if strings.Contains(got, highD83D) {
		t.Fatalf("surrogate bytes survived: %q", got)
	}
	want := "Text with surrogate: � and more text"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestString_MultipleSurrogates(t *testing.T) {
	in := "Normal text " + highD83D + " incomplete emoji " + lowDE00 + " more " + lowDEAD
	got := String(in)

	if strings.Count(got, Replacement) != 3 {
		t.Errorf("got %d replacements in %q, want 3", strings.Count(got, Replacement), got)
	}
	if !strings.HasPrefix(got, "Normal text ") || !strings.Contains(got, " more ") {
		t.Errorf("surrounding text lost: %q", got)
	}
}

func TestString_MixedValidAndInvalid(t *testing.T) {
	in := "Mixed " + highD83D + " valid 😀 and " + lowDE00 + " invalid"
	got := String(in)
	if !strings.Contains(got, "😀") {
		t.Errorf("valid emoji lost: %q", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("result not valid UTF-8: %q", got)
	}
}

func TestString_StrayBytes(t *testing.T) {
	got := String("a\xffb\xc0")
	if got != "a�b�" {
		t.Errorf("got %q", got)
	}
}

func TestString_Properties(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"Text with " + highD83D + " surrogate",
		"Multiple " + highD83D + " " + lowDE00 + " surrogates " + lowDEAD,
		"truncated \xed\xa0",
		"\xed",
		"\xff\xfe\xfd",
		Replacement,
	}
	for _, in := range inputs {
		once := String(in)
		if !utf8.ValidString(once) {
			t.Errorf("String(%q) = %q is not valid UTF-8", in, once)
		}
		if twice := String(once); twice != once {
			t.Errorf("not idempotent for %q: %q != %q", in, twice, once)
		}
		for _, r := range once {
			if r >= 0xD800 && r <= 0xDFFF {
				t.Errorf("surrogate %U left in %q", r, once)
			}
		}
	}
}

func TestBytes(t *testing.T) {
	clean := []byte("ok")
	if got := Bytes(clean); string(got) != "ok" {
		t.Errorf("got %q", got)
	}
	if got := Bytes([]byte("x" + highD83D)); string(got) != "x�" {
		t.Errorf("got %q", got)
	}
}
