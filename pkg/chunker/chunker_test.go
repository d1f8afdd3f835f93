package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"empty", "   ", 10, nil},
		{"fits", "Hello world.", 50, []string{"Hello world."}},
		{"no limit", "Hello world.", 0, []string{"Hello world."}},
		{
			"sentences",
			"One two. Three four! Five six?",
			20,
			[]string{"One two. Three four!", "Five six?"},
		},
		{
			"clauses",
			"alpha beta, gamma delta; epsilon",
			14,
			[]string{"alpha beta,", "gamma delta;", "epsilon"},
		},
		{
			"words",
			"aaa bbb ccc ddd",
			7,
			[]string{"aaa bbb", "ccc ddd"},
		},
		{
			"long word",
			"abcdefghij",
			4,
			[]string{"abcd", "efgh", "ij"},
		},
		{
			"multibyte",
			"日本語の文章です。 次の文です。",
			10,
			[]string{"日本語の文章です。", "次の文です。"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, tt.max)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("Split(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func TestSplit_RespectsLimit(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	for _, piece := range Split(text, 100) {
		if n := utf8.RuneCountInString(piece); n > 100 {
			t.Errorf("piece of %d runes exceeds limit: %q", n, piece)
		}
	}
	if got := strings.Join(Split(text, 100), " "); got != strings.TrimSpace(text) {
		t.Error("pieces should rejoin to the original text")
	}
}
