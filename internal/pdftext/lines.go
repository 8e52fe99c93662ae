// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ligatures = strings.NewReplacer(
	"\ufb00", "ff",
	"\ufb01", "fi",
	"\ufb02", "fl",
	"\ufb03", "ffi",
	"\ufb04", "ffl",
	"\ufb05", "st",
	"\ufb06", "st",
	"\u00a0", " ",
)

// cleaner composes to NFC and drops format characters (soft hyphens,
// zero-width joiners) that PDF text layers scatter through words.
// Transformers carry state, so each call builds its own chain.
func cleaner() transform.Transformer {
	return transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cf)))
}

// Clean normalizes one chunk of extracted text.
func Clean(s string) string {
	s = ligatures.Replace(s)
	out, _, err := transform.String(cleaner(), s)
	if err != nil {
		return s
	}
	return out
}

// Lines splits text into trimmed, non-empty, cleaned lines.
func Lines(text string) []string {
	text = Clean(text)
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
