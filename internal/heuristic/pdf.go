// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package heuristic

import (
	"regexp"
	"strings"

	"github.com/pdiddy/link2ref/internal/csl"
	"github.com/pdiddy/link2ref/pkg/types"
)

// PDFPlaceholder is the title of a PDF record whose title heuristics found
// nothing.
const PDFPlaceholder = "Untitled PDF Report"

const (
	titleScanLines   = 12
	maxTitleLength   = 200
	authorScanFirst  = 1 // second line
	authorScanLast   = 15
	standaloneWindow = 5
)

// ExtractPDF applies the title, author, year, and publisher heuristics to
// the cleaned lines of a PDF's first pages. The type is always report.
func ExtractPDF(lines []string) csl.Fields {
	return csl.Fields{
		Type:        types.TypeReport,
		Title:       Title(lines),
		Authors:     strings.Join(Authors(lines), "; "),
		Issued:      Year(lines),
		Publisher:   Publisher(lines),
		Placeholder: PDFPlaceholder,
	}
}

// lineAction is what a title rule does with a matching line.
type lineAction int

const (
	// stop ends the scan.
	stop lineAction = iota
	// stopOnceStarted ends the scan when a title has been accumulated and
	// skips the line otherwise.
	stopOnceStarted
	// stopOrAccept ends the scan when a title has been accumulated;
	// otherwise the rule is ignored.
	stopOrAccept
	// skip ignores the line.
	skip
)

// lineRule is one entry of the title rule table. The first matching rule
// decides; a line no rule matches is accumulated into the title.
type lineRule struct {
	name   string
	match  func(lines []string, i int) bool
	action lineAction
}

var titleRules = []lineRule{
	{"section heading", lineMatches(sectionHeading), stop},
	{"email", lineContains(emailPattern), stopOnceStarted},
	{"author line", isAuthorLine, stopOnceStarted},
	{"name before affiliation", isNameBeforeAffiliation, stopOrAccept},
	{"affiliation", isAffiliationLine, stopOnceStarted},
	{"letter spacing", lineMatches(letterSpaced), skip},
	{"document label", lineMatches(documentLabel), skip},
	{"numeric fragment", isNumericFragment, skip},
	{"date line", lineMatches(monthYearLine), skip},
	{"arxiv stamp", lineMatches(arxivStamp), skip},
	{"url or doi", lineMatches(urlOrDOILine), skip},
	{"copyright", lineMatches(copyrightLine), skip},
}

func lineMatches(re *regexp.Regexp) func([]string, int) bool {
	return func(lines []string, i int) bool { return re.MatchString(lines[i]) }
}

func lineContains(re *regexp.Regexp) func([]string, int) bool {
	return func(lines []string, i int) bool { return re.FindStringIndex(lines[i]) != nil }
}

// isNumericFragment matches page numbers, volume stamps, and similar short
// lines that are mostly digits.
func isNumericFragment(lines []string, i int) bool {
	l := lines[i]
	if len([]rune(l)) > 15 {
		return false
	}
	letters, digits := 0, 0
	for _, r := range l {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letters++
		}
	}
	return digits > 0 && letters <= 3
}

// isAffiliationLine matches institution lines that are not part of a name
// list ("Department of Physics, University of X").
func isAffiliationLine(lines []string, i int) bool {
	return affiliationWords.MatchString(lines[i])
}

// isAuthorLine matches any line an author strategy would accept, plus a
// bare personal name that carries an initial.
func isAuthorLine(lines []string, i int) bool {
	l := lines[i]
	switch {
	case authorPrefix.MatchString(l):
		return true
	case byPrefix.MatchString(l) && len(splitNameList(byPrefix.FindStringSubmatch(l)[1])) > 0:
		return true
	case academicTitle.MatchString(l):
		return true
	case len(bylineNames(l)) >= 2:
		return true
	case nameThenAffiliation.MatchString(l):
		return true
	}
	return isNameShaped(l) && hasInitial(l)
}

// isNameBeforeAffiliation matches a name-shaped line followed by an
// affiliation or email line. Short titles look the same, so it only ends
// a title that has already started.
func isNameBeforeAffiliation(lines []string, i int) bool {
	if i+1 >= len(lines) || !isNameShaped(lines[i]) {
		return false
	}
	next := lines[i+1]
	return affiliationWords.MatchString(next) || emailPattern.MatchString(next)
}

// Title scans the first lines, accumulating title lines until a stop rule
// fires. A result over 200 characters falls back to its first line.
func Title(lines []string) string {
	var parts []string
scan:
	for i := 0; i < len(lines) && i < titleScanLines; i++ {
		for _, rule := range titleRules {
			if !rule.match(lines, i) {
				continue
			}
			switch rule.action {
			case stop:
				break scan
			case stopOnceStarted:
				if len(parts) > 0 {
					break scan
				}
			case stopOrAccept:
				if len(parts) > 0 {
					break scan
				}
				continue
			}
			continue scan
		}
		parts = append(parts, lines[i])
	}

	if len(parts) == 0 {
		return ""
	}
	title := strings.Join(parts, " ")
	if len([]rune(title)) > maxTitleLength {
		return parts[0]
	}
	return title
}

// authorStrategy returns names found in the author window, or nil.
type authorStrategy struct {
	name string
	find func(window []string) []string
}

var authorStrategies = []authorStrategy{
	{"author prefix", authorsFromPrefix},
	{"by line", authorsFromBy},
	{"academic title", authorsFromAcademicTitles},
	{"byline", authorsFromByline},
	{"name before affiliation", authorsBeforeAffiliation},
}

// Authors runs the author strategies over lines 2-15 in priority order; the
// first strategy that yields a name wins.
func Authors(lines []string) []string {
	window := authorWindow(lines)
	for _, s := range authorStrategies {
		if names := s.find(window); len(names) > 0 {
			return dedupe(names)
		}
	}
	return nil
}

func authorWindow(lines []string) []string {
	if len(lines) <= authorScanFirst {
		return nil
	}
	end := authorScanLast
	if end > len(lines) {
		end = len(lines)
	}
	return lines[authorScanFirst:end]
}

func authorsFromPrefix(window []string) []string {
	for _, l := range window {
		if m := authorPrefix.FindStringSubmatch(l); m != nil {
			return splitNameList(stripMarkers(m[1]))
		}
	}
	return nil
}

// authorsFromBy reads "by A, B, and C" and appends continuation lines made
// of names until a non-name or affiliation line.
func authorsFromBy(window []string) []string {
	for i, l := range window {
		m := byPrefix.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		names := splitNameList(stripMarkers(m[1]))
		if len(names) == 0 {
			continue
		}
		for _, next := range window[i+1:] {
			if affiliationWords.MatchString(next) {
				break
			}
			more := splitNameList(stripMarkers(next))
			if len(more) == 0 || !isNameList(next) {
				break
			}
			names = append(names, more...)
		}
		return names
	}
	return nil
}

// isNameList reports whether every separated entry of s is name shaped.
func isNameList(s string) bool {
	s = strings.TrimSpace(nameListSeparator.ReplaceAllString(stripMarkers(s), ","))
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !isNameShaped(part) {
			return false
		}
	}
	return true
}

func authorsFromAcademicTitles(window []string) []string {
	var names []string
	for _, l := range window {
		if !academicTitle.MatchString(l) {
			continue
		}
		cleaned := academicTitle.ReplaceAllString(stripMarkers(l), "")
		names = append(names, splitNameList(cleaned)...)
	}
	return names
}

// bylineNames accepts an academic byline: at least three capitalized
// tokens, commas, and footnote markers or ORCIDs. Markers are stripped
// before the names are split.
func bylineNames(l string) []string {
	if !strings.Contains(l, ",") || len(capitalToken.FindAllString(l, -1)) < 3 {
		return nil
	}
	if !footnoteMarker.MatchString(l) && !superscripts.MatchString(l) && !orcidPattern.MatchString(l) {
		return nil
	}
	return splitNameList(stripMarkers(l))
}

func authorsFromByline(window []string) []string {
	for _, l := range window {
		if names := bylineNames(l); len(names) >= 2 {
			return names
		}
	}
	return nil
}

// authorsBeforeAffiliation collects the consecutive run of
// "Name . University of X" lines.
func authorsBeforeAffiliation(window []string) []string {
	var names []string
	for _, l := range window {
		m := nameThenAffiliation.FindStringSubmatch(l)
		if m == nil {
			if len(names) > 0 {
				break
			}
			continue
		}
		names = append(names, strings.TrimSpace(m[1]))
	}
	return names
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

var (
	explicitYear   = regexp.MustCompile(`(?i)\b(?:published|date|issued|received|accepted)\b[^\n]{0,40}?\b((?:19|20)\d{2})\b`)
	monthYear      = regexp.MustCompile(`(?i)\b(?:` + monthNames + `)\.?\s+(?:\d{1,2}(?:st|nd|rd|th)?,?\s+)?((?:19|20)\d{2})\b`)
	copyrightYear  = regexp.MustCompile(`(?i)(?:©|\(c\)|copyright)\s*((?:19|20)\d{2})\b`)
	standaloneYear = regexp.MustCompile(`^((?:19|20)\d{2})$`)
)

// Year returns the publication year as a four-digit string, trying an
// explicit date label, a month-name date, a copyright notice, then a
// standalone year line among the first five lines.
func Year(lines []string) string {
	for _, re := range []*regexp.Regexp{explicitYear, monthYear, copyrightYear} {
		for _, l := range lines {
			if m := re.FindStringSubmatch(l); m != nil {
				return m[1]
			}
		}
	}
	for i := 0; i < len(lines) && i < standaloneWindow; i++ {
		if m := standaloneYear.FindStringSubmatch(lines[i]); m != nil {
			return m[1]
		}
	}
	return ""
}

var publisherPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:published|produced|prepared|issued)\s+by\s+(?:the\s+)?([^.;]+?)\.`),
	regexp.MustCompile(`©\s*(?:19|20)\d{2}\s+(?:by\s+)?(?:the\s+)?([^.]+?)\.`),
	regexp.MustCompile(`(?i)\bcopyright\s+(?:©\s*)?(?:(?:19|20)\d{2}\s+)?(?:by\s+)?(?:the\s+)?([^.]+?)\.`),
}

var publisherStopwords = map[string]bool{
	"and": true, "the": true, "a": true, "an": true, "of": true, "in": true,
	"on": true, "for": true, "to": true, "by": true, "with": true, "all": true,
	"this": true, "that": true, "these": true, "its": true, "our": true,
}

// Publisher matches publisher statements over the joined text and returns
// the first candidate that passes validation.
func Publisher(lines []string) string {
	text := strings.Join(lines, " ")
	for _, re := range publisherPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if c := strings.TrimSpace(m[1]); validPublisher(c) {
				return c
			}
		}
	}
	return ""
}

func validPublisher(c string) bool {
	n := len([]rune(c))
	if n < 5 || n > 80 || strings.Contains(c, ";") {
		return false
	}
	words := strings.Fields(c)
	if len(words) < 2 {
		return false
	}
	return !publisherStopwords[strings.ToLower(words[0])]
}
