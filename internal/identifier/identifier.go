// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identifier classifies raw user input and canonicalizes it into a
// fetchable locator: a DOI resolver URL, an arXiv abstract URL, or a plain
// web URL. It also pulls DOIs and arXiv ids out of arbitrary locator text.
package identifier

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/link2ref/pkg/types"
)

// Kind classifies a normalized locator.
type Kind int

const (
	KindUnknown Kind = iota
	KindDOI
	KindArxiv
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindDOI:
		return "doi"
	case KindArxiv:
		return "arxiv"
	case KindURL:
		return "url"
	default:
		return "unknown"
	}
}

const (
	// DOIResolverBase is the canonical DOI resolver prefix.
	DOIResolverBase = "https://doi.org/"

	// ArxivAbsBase is the canonical arXiv abstract page prefix.
	ArxivAbsBase = "https://arxiv.org/abs/"

	// ArxivDOIPrefix is the DataCite prefix arXiv registers for every preprint.
	ArxivDOIPrefix = "10.48550/arXiv."
)

type emptyInputError struct{}

func (emptyInputError) Error() string { return "Empty input" }
func (emptyInputError) Unwrap() error { return types.ErrInvalidInput }

// ErrEmptyInput is returned by Normalize for empty or whitespace-only input.
// It matches types.ErrInvalidInput under errors.Is.
var ErrEmptyInput error = emptyInputError{}

// oldArxivArchives are the archive names of pre-2007 arXiv ids such as
// "hep-th/9901001" or "math.GT/0309136".
const oldArxivArchives = `acc-phys|adap-org|alg-geom|ao-sci|astro-ph|atom-ph|bayes-an|chao-dyn|` +
	`chem-ph|cmp-lg|comp-gas|cond-mat|cs|dg-ga|funct-an|gr-qc|hep-ex|hep-lat|hep-ph|hep-th|` +
	`math|math-ph|mtrl-th|nlin|nucl-ex|nucl-th|patt-sol|physics|plasm-ph|q-alg|q-bio|` +
	`quant-ph|solv-int|supr-con`

const (
	newArxivID = `\d{4}\.\d{4,5}`
	oldArxivID = `(?:` + oldArxivArchives + `)(?:\.[A-Z]{2})?/\d{7}`
)

var (
	schemePattern = regexp.MustCompile(`(?i)^https?://`)
	doiPrefix     = regexp.MustCompile(`(?i)^doi:\s*`)

	// bareDOIPattern matches input that starts with a DOI: "10.1145/1234567.1234568".
	// Trailing text after the DOI is allowed and cut off by leadingDOI.
	bareDOIPattern = regexp.MustCompile(`(?i)^10\.\d{4,9}/\S`)

	// doiInText finds a DOI anywhere in text.
	doiInText = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:A-Z0-9]+`)

	// arxivPattern matches arXiv ids: "2301.07041", "arXiv:2301.07041v2",
	// "hep-th/9901001". Archive names and subject classes are case sensitive.
	arxivPattern = regexp.MustCompile(`^(?i:arXiv:)?(` + newArxivID + `(?:v\d+)?|` + oldArxivID + `(?:v\d+)?)$`)

	// arxivURLPattern matches arXiv abstract, PDF, and HTML URLs.
	arxivURLPattern = regexp.MustCompile(`^(?i:https?://(?:www\.|export\.)?arxiv\.org/(?:abs|pdf|html)/)(` +
		oldArxivID + `|` + newArxivID + `)(?:v\d+)?(?:\.pdf)?/?(?:[?#].*)?$`)

	doiResolverPattern = regexp.MustCompile(`(?i)^https?://(?:dx\.)?doi\.org/`)
)

// Normalize turns a raw user string into a fetchable locator. Rules are
// applied in order and the first match wins:
//
//  1. http(s) URL: unchanged;
//  2. "doi:" prefix: DOI resolver URL;
//  3. bare DOI: DOI resolver URL;
//  4. bare arXiv id: arXiv abstract URL;
//  5. anything else: "https://" prepended as a best-effort guess.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyInput
	}

	if schemePattern.MatchString(s) {
		return s, nil
	}

	if doiPrefix.MatchString(s) {
		return DOIResolverBase + leadingDOI(doiPrefix.ReplaceAllString(s, "")), nil
	}

	if bareDOIPattern.MatchString(s) {
		return DOIResolverBase + leadingDOI(s), nil
	}

	if m := arxivPattern.FindStringSubmatch(s); m != nil {
		return ArxivAbsBase + m[1], nil
	}

	return "https://" + s, nil
}

// leadingDOI returns the first whitespace-separated token of s without
// trailing sentence punctuation: "10.1038/abc (Nature)" gives "10.1038/abc".
func leadingDOI(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimRight(fields[0], ".,;:")
}

// Classify determines the kind of a normalized locator.
func Classify(locator string) Kind {
	switch {
	case IsDOIResolverURL(locator):
		return KindDOI
	case ArxivIDFromURL(locator) != "":
		return KindArxiv
	}
	if u, err := url.Parse(locator); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return KindURL
	}
	return KindUnknown
}

// DOIFromText returns the first DOI found in text, with trailing
// punctuation removed, or "".
func DOIFromText(text string) string {
	m := doiInText.FindString(text)
	if m == "" {
		return ""
	}
	return strings.TrimRight(m, ".,;:)")
}

// DOIFromURL extracts a DOI from the path, query, and fragment of a URL
// after percent-decoding them. Unparseable URLs are scanned as plain text.
func DOIFromURL(locator string) string {
	if locator == "" {
		return ""
	}
	u, err := url.Parse(locator)
	if err != nil {
		return DOIFromText(locator)
	}
	tail := u.EscapedPath()
	if u.RawQuery != "" {
		tail += "?" + u.RawQuery
	}
	if u.Fragment != "" {
		tail += "#" + u.Fragment
	}
	if decoded, err := url.PathUnescape(tail); err == nil {
		tail = decoded
	}
	return DOIFromText(tail)
}

// IsDOIResolverURL reports whether locator points at the DOI resolver.
func IsDOIResolverURL(locator string) bool {
	return doiResolverPattern.MatchString(locator)
}

// ArxivIDFromURL returns the version-less arXiv id of an abs/pdf/html URL,
// or "".
func ArxivIDFromURL(locator string) string {
	m := arxivURLPattern.FindStringSubmatch(strings.TrimSpace(locator))
	if m == nil {
		return ""
	}
	return m[1]
}

// ArxivDOI returns the DataCite DOI arXiv assigns to a preprint.
func ArxivDOI(arxivID string) string {
	return ArxivDOIPrefix + arxivID
}

// StripDOIResolver removes a resolver or "doi:" prefix, returning the bare DOI.
func StripDOIResolver(s string) string {
	s = strings.TrimSpace(s)
	s = doiResolverPattern.ReplaceAllString(s, "")
	return doiPrefix.ReplaceAllString(s, "")
}
