// Package chunker splits long text into pieces a translation model can take
// in one call. Pieces never overlap and rejoin with a single space.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split breaks text into pieces of at most maxRunes runes, preferring
// sentence boundaries, then clause boundaries, then words. A word longer
// than maxRunes is cut. Text that already fits is returned as is.
func Split(text string, maxRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}

	levels := []func(string) []string{
		sentences,
		func(s string) []string { return splitAfter(s, ",;:") },
		strings.Fields,
	}
	return pack(text, levels, maxRunes)
}

func pack(text string, levels []func(string) []string, maxRunes int) []string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}
	if len(levels) == 0 {
		return cut(text, maxRunes)
	}

	var out []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			out = append(out, current.String())
			current.Reset()
		}
	}

	for _, part := range levels[0](text) {
		n := utf8.RuneCountInString(part)
		if n > maxRunes {
			flush()
			out = append(out, pack(part, levels[1:], maxRunes)...)
			continue
		}
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+1+n > maxRunes {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(part)
	}
	flush()

	return out
}

// sentences splits after '.', '!' or '?' followed by whitespace.
func sentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func splitAfter(text, seps string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if strings.ContainsRune(seps, r) {
			end := i + utf8.RuneLen(r)
			if s := strings.TrimSpace(text[start:end]); s != "" {
				out = append(out, s)
			}
			start = end
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func cut(text string, maxRunes int) []string {
	var out []string
	runes := []rune(text)
	for i := 0; i < len(runes); i += maxRunes {
		end := min(i+maxRunes, len(runes))
		out = append(out, string(runes[i:end]))
	}
	return out
}
