package chunker

import (
	"strings"
	"testing"

	"github.com/Maroua-Bm/PDF-project/internal/doctree"
)

func TestSplitSentences_Delimiters(t *testing.T) {
	input := "The cat sat on the mat. Dogs bark!Is it raining? هل تمطر؟ yes\nnew line"
	want := []string{
		"The cat sat on the mat",
		"Dogs bark",
		"Is it raining",
		"هل تمطر",
		"yes",
		"new line",
	}

	got := SplitSentences(input)
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %q", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("sentence[%d]: expected %q, got %q", i, w, got[i])
		}
	}
}

func TestSplitSentences_NeverEmpty(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"...!!!???",
		"\n\n\n",
		"  .  \n  ! a  .. b \t.\n",
		"no delimiters at all",
	}
	for _, in := range inputs {
		for _, s := range SplitSentences(in) {
			if strings.TrimSpace(s) == "" {
				t.Errorf("input %q produced blank sentence", in)
			}
			if s != strings.TrimSpace(s) {
				t.Errorf("input %q produced untrimmed sentence %q", in, s)
			}
		}
	}
}

func TestSplitSentences_PreservesCase(t *testing.T) {
	got := SplitSentences("The CAT Sat.")
	if len(got) != 1 || got[0] != "The CAT Sat" {
		t.Errorf("expected case preserved, got %q", got)
	}
}

func TestSplitDocument_TagsPagesInOrder(t *testing.T) {
	doc := &doctree.Document{Pages: []doctree.Page{
		{Number: 1, Text: "The cat sat on the mat."},
		{Number: 2, Text: "Dogs bark loudly. Cats purr."},
		{Number: 3, Text: "   "},
	}}

	got := SplitDocument(doc)
	want := []doctree.Sentence{
		{Text: "The cat sat on the mat", Page: 1},
		{Text: "Dogs bark loudly", Page: 2},
		{Text: "Cats purr", Page: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i] != w {
			t.Errorf("sentence[%d]: expected %+v, got %+v", i, w, got[i])
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"مرحبا بك", 5, "مرحبا"},
		{"abc", 0, ""},
		{"", 4, ""},
	}
	for _, tc := range cases {
		if got := TruncateRunes(tc.in, tc.n); got != tc.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 0 {
		t.Error("expected 0 tokens for empty text")
	}
	if got := EstimateTokens("one two three four"); got != 5 {
		t.Errorf("expected 5 tokens, got %d", got)
	}
	if got := EstimateTokens("x"); got != 1 {
		t.Errorf("expected at least 1 token, got %d", got)
	}
}
