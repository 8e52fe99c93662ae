// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package heuristic

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pdiddy/link2ref/internal/csl"
)

const monthNames = `January|February|March|April|May|June|July|August|September|October|November|December|` +
	`Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec`

var (
	sectionHeading = regexp.MustCompile(`(?i)^(?:abstract|introduction|keywords|key words|index terms)\b`)
	emailPattern   = regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`)

	// letterSpaced matches decorative headers such as "J U N E 2 0 2 3".
	letterSpaced = regexp.MustCompile(`^(?:\S ){3,}\S$`)

	documentLabel = regexp.MustCompile(`(?i)^(?:working paper|technical report|discussion paper|research report|research paper|policy brief|issue brief|white paper|occasional paper|conference paper|preprint|report|draft)(?:\s+(?:no\.?|series|#))?(?:\s*[\w./-]+)?$`)

	monthYearLine = regexp.MustCompile(`(?i)^(?:\d{1,2}\s+)?(?:` + monthNames + `)\.?\s+(?:\d{1,2}(?:st|nd|rd|th)?,?\s+)?\d{4}$`)
	arxivStamp    = regexp.MustCompile(`(?i)^arxiv:\s*(?:\d{4}\.\d{4,5}|[a-z-]+/\d{7})`)
	urlOrDOILine  = regexp.MustCompile(`(?i)^(?:https?://|www\.|doi:|10\.\d{4,9}/)`)
	copyrightLine = regexp.MustCompile(`(?i)^(?:©|\(c\)\s|copyright\b)`)

	authorPrefix  = regexp.MustCompile(`(?i)^author(?:s|\(s\))?\s*:\s*(.+)$`)
	byPrefix      = regexp.MustCompile(`(?i)^by\s+(.+)$`)
	academicTitle = regexp.MustCompile(`\b(?:Dr\.|Prof\.|Professor)\s*`)

	affiliationWords = regexp.MustCompile(`(?i)\b(?:university|universidad|universidade|università|université|institute|instituto|department|dept\.|school of|college|laboratory|laboratories|faculty|hospital|centre|center|inc\.|ltd\.|gmbh)\b`)

	// nameThenAffiliation matches "Jane Doe . University of X".
	nameThenAffiliation = regexp.MustCompile(`^(\p{Lu}[\p{L}'’.-]*(?:\s+\p{Lu}[\p{L}'’.-]*){1,3})\s*[.·•|]\s+(?:University|Universidad|Universidade|Institute|College|School)\b`)

	orcidPattern   = regexp.MustCompile(`(?i)(?:https?://)?(?:orcid\.org/)?\b\d{4}-\d{4}-\d{4}-\d{3}[\dX]\b`)
	footnoteMarker = regexp.MustCompile(`([\p{L}.])[\d*†‡§¶#¹²³⁴⁵⁶⁷⁸⁹⁰]+(?:,[\d*†‡§¶#¹²³⁴⁵⁶⁷⁸⁹⁰]+)*`)
	superscripts   = regexp.MustCompile(`[*†‡§¶¹²³⁴⁵⁶⁷⁸⁹⁰]`)
	capitalToken   = regexp.MustCompile(`\b\p{Lu}[\p{Ll}'’-]+`)

	nameListSeparator = regexp.MustCompile(`(?i)\s*(?:,|;|&|\band\b)\s*`)
	etAl              = regexp.MustCompile(`(?i)\bet\.?\s+al\.?`)
)

var nameParticles = map[string]bool{
	"van": true, "von": true, "de": true, "da": true, "der": true, "den": true,
	"del": true, "della": true, "di": true, "du": true, "dos": true, "das": true,
	"la": true, "le": true, "bin": true, "al": true, "y": true,
}

// isNameShaped reports whether s reads like a personal name: two to five
// tokens, each capitalized, an initial, or a lowercase particle, with no
// digits, no affiliation vocabulary, and nothing institutional.
func isNameShaped(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || affiliationWords.MatchString(s) || csl.IsInstitutional(s) || strings.ContainsAny(s, "0123456789@:") {
		return false
	}
	tokens := strings.Fields(s)
	if len(tokens) < 2 || len(tokens) > 5 {
		return false
	}
	capitals := 0
	for _, tok := range tokens {
		r := []rune(tok)
		switch {
		case unicode.IsUpper(r[0]):
			capitals++
		case nameParticles[strings.ToLower(tok)]:
		default:
			return false
		}
	}
	return capitals >= 2
}

// hasInitial reports whether s contains a single-letter initial like "J.".
func hasInitial(s string) bool {
	for _, tok := range strings.Fields(s) {
		r := []rune(tok)
		if len(r) == 2 && unicode.IsUpper(r[0]) && r[1] == '.' {
			return true
		}
	}
	return false
}

// splitNameList splits "A, B and C" style lists and keeps name-shaped
// entries.
func splitNameList(s string) []string {
	s = etAl.ReplaceAllString(s, "")
	var names []string
	for _, part := range nameListSeparator.Split(s, -1) {
		part = strings.Trim(strings.TrimSpace(part), ".")
		if isNameShaped(part) {
			names = append(names, part)
		}
	}
	return names
}

// stripMarkers removes ORCID identifiers, footnote digits, and superscript
// symbols attached to names.
func stripMarkers(s string) string {
	s = orcidPattern.ReplaceAllString(s, "")
	s = footnoteMarker.ReplaceAllString(s, "$1")
	s = superscripts.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
