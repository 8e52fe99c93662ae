// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/link2ref/internal/identifier"
	"github.com/pdiddy/link2ref/pkg/types"
)

// apaMaxAuthors is the longest author list APA 7 prints in full.
const apaMaxAuthors = 20

var errNoTitle = fmt.Errorf("%w: record has no title", types.ErrFormattingFailed)

// APA renders a record as an APA 7 reference entry.
func APA(rec types.Record) (string, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return "", errNoTitle
	}

	var parts []string
	authors := apaAuthors(rec.Author)
	date := "(" + apaDate(rec.Issued) + ")."
	if authors != "" {
		parts = append(parts, sentence(authors), date, sentence(title))
	} else {
		parts = append(parts, sentence(title), date)
	}

	if rec.ContainerTitle != "" && !sameText(rec.ContainerTitle, title) {
		parts = append(parts, sentence(rec.ContainerTitle))
	}
	if rec.Publisher != "" && !sameText(rec.Publisher, rec.ContainerTitle) && !sameText(rec.Publisher, authors) {
		parts = append(parts, sentence(rec.Publisher))
	}

	switch {
	case rec.DOI != "":
		parts = append(parts, identifier.DOIResolverBase+rec.DOI)
	case rec.URL != "" && rec.Issued == nil && rec.Accessed != nil:
		parts = append(parts, fmt.Sprintf("Retrieved %s, from %s", longDate(rec.Accessed), rec.URL))
	case rec.URL != "":
		parts = append(parts, rec.URL)
	}
	return strings.Join(parts, " "), nil
}

// apaAuthors joins names as "A, B, & C". Lists longer than twenty keep the
// first nineteen, an ellipsis, and the last name.
func apaAuthors(names []types.Name) string {
	list := make([]string, 0, len(names))
	for _, n := range names {
		if s := apaName(n); s != "" {
			list = append(list, s)
		}
	}
	switch n := len(list); {
	case n == 0:
		return ""
	case n == 1:
		return list[0]
	case n > apaMaxAuthors:
		return strings.Join(list[:apaMaxAuthors-1], ", ") + ", . . . " + list[n-1]
	default:
		return strings.Join(list[:n-1], ", ") + ", & " + list[n-1]
	}
}

func apaName(n types.Name) string {
	if n.Literal != "" {
		return n.Literal
	}
	if n.Family == "" {
		return n.Given
	}
	if in := initials(n.Given); in != "" {
		return n.Family + ", " + in
	}
	return n.Family
}

// initials abbreviates given names: "Charles R." becomes "C. R." and
// "Jean-Paul" becomes "J.-P.".
func initials(given string) string {
	var out []string
	for _, word := range strings.Fields(given) {
		var hy []string
		for _, part := range strings.Split(word, "-") {
			r, _ := utf8.DecodeRuneInString(part)
			if r == utf8.RuneError || !unicode.IsLetter(r) {
				continue
			}
			hy = append(hy, string(unicode.ToUpper(r))+".")
		}
		if len(hy) > 0 {
			out = append(out, strings.Join(hy, "-"))
		}
	}
	return strings.Join(out, " ")
}

func apaDate(d *types.Date) string {
	switch {
	case d.Year() == 0:
		return "n.d."
	case d.Month() == 0:
		return fmt.Sprintf("%d", d.Year())
	case d.Day() == 0:
		return fmt.Sprintf("%d, %s", d.Year(), time.Month(d.Month()))
	default:
		return fmt.Sprintf("%d, %s %d", d.Year(), time.Month(d.Month()), d.Day())
	}
}

// longDate renders "March 9, 2026", dropping missing parts.
func longDate(d *types.Date) string {
	switch {
	case d.Month() == 0:
		return fmt.Sprintf("%d", d.Year())
	case d.Day() == 0:
		return fmt.Sprintf("%s %d", time.Month(d.Month()), d.Year())
	default:
		return fmt.Sprintf("%s %d, %d", time.Month(d.Month()), d.Day(), d.Year())
	}
}

// sentence terminates s with a period unless it already ends in
// punctuation.
func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '?', '!':
		return s
	}
	return s + "."
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
