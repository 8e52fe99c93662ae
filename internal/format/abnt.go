// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/link2ref/internal/identifier"
	"github.com/pdiddy/link2ref/pkg/types"
)

// abntMaxAuthors is the longest author list printed before "et al.".
const abntMaxAuthors = 3

var ptMonths = [...]string{"jan.", "fev.", "mar.", "abr.", "maio", "jun.", "jul.", "ago.", "set.", "out.", "nov.", "dez."}

// ptUpper uppercases with Portuguese rules. Casers are stateful, so each
// call builds its own.
func ptUpper(s string) string {
	return cases.Upper(language.BrazilianPortuguese).String(s)
}

// ABNT renders a record per ABNT NBR 6023. Records without an access date
// are stamped with now.
func ABNT(rec types.Record, now time.Time) (string, error) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return "", errNoTitle
	}

	var parts []string
	if authors := abntAuthors(rec.Author); authors != "" {
		parts = append(parts, sentence(authors), sentence(title))
	} else {
		parts = append(parts, sentence(upperFirstWord(title)))
	}
	if rec.ContainerTitle != "" && !sameText(rec.ContainerTitle, title) {
		parts = append(parts, sentence(rec.ContainerTitle))
	}

	year := "[s. d.]"
	if y := rec.Issued.Year(); y > 0 {
		year = fmt.Sprintf("%d", y)
	}
	if rec.Publisher != "" {
		parts = append(parts, fmt.Sprintf("[S. l.]: %s, %s.", strings.TrimRight(rec.Publisher, "."), year))
	} else {
		parts = append(parts, year+".")
	}

	if rec.DOI != "" {
		parts = append(parts, "DOI: "+sentence(rec.DOI))
	}
	link := rec.URL
	if link == "" && rec.DOI != "" {
		link = identifier.DOIResolverBase + rec.DOI
	}
	if link != "" {
		accessed := rec.Accessed
		if accessed == nil {
			accessed = types.NewDate(now.Year(), int(now.Month()), now.Day())
		}
		parts = append(parts, "Disponível em: "+link+".", "Acesso em: "+ptDate(accessed)+".")
	}
	return strings.Join(parts, " "), nil
}

// abntAuthors renders "FAMILY, Given; FAMILY, Given". More than three
// authors collapse to the first followed by "et al.".
func abntAuthors(names []types.Name) string {
	list := make([]string, 0, len(names))
	for _, n := range names {
		if s := abntName(n); s != "" {
			list = append(list, s)
		}
	}
	if len(list) > abntMaxAuthors {
		return list[0] + " et al."
	}
	return strings.Join(list, "; ")
}

func abntName(n types.Name) string {
	switch {
	case n.Literal != "":
		return ptUpper(n.Literal)
	case n.Family == "":
		return n.Given
	case n.Given == "":
		return ptUpper(n.Family)
	default:
		return ptUpper(n.Family) + ", " + n.Given
	}
}

// upperFirstWord uppercases the entry word of a title-led reference.
func upperFirstWord(title string) string {
	word, rest, found := strings.Cut(title, " ")
	if !found {
		return ptUpper(title)
	}
	return ptUpper(word) + " " + rest
}

// ptDate renders "9 mar. 2026", dropping missing parts.
func ptDate(d *types.Date) string {
	switch {
	case d.Month() == 0:
		return fmt.Sprintf("%d", d.Year())
	case d.Day() == 0:
		return fmt.Sprintf("%s %d", ptMonths[d.Month()-1], d.Year())
	default:
		return fmt.Sprintf("%d %s %d", d.Day(), ptMonths[d.Month()-1], d.Year())
	}
}
