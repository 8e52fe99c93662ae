// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package heuristic guesses bibliographic fields from documents that have
// no registry record: HTML pages (metadata tags, JSON-LD) and the plain
// text of a PDF's first pages (ordered line rules). Every heuristic is best
// effort; a missing match leaves the field empty.
package heuristic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/link2ref/internal/csl"
	"github.com/pdiddy/link2ref/internal/identifier"
	"github.com/pdiddy/link2ref/pkg/types"
)

// metaTags indexes <meta> content by lowercased name or property, keeping
// document order.
type metaTags map[string][]string

func readMeta(doc *goquery.Document) metaTags {
	m := metaTags{}
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		content = strings.TrimSpace(content)
		if !ok || content == "" {
			return
		}
		for _, attr := range []string{"name", "property", "itemprop"} {
			if key, ok := s.Attr(attr); ok && key != "" {
				key = strings.ToLower(strings.TrimSpace(key))
				m[key] = append(m[key], content)
				return
			}
		}
	})
	return m
}

// first returns the first non-empty value among names, in priority order.
func (m metaTags) first(names ...string) string {
	for _, n := range names {
		if vals := m[n]; len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// all returns every value of the first name that has any.
func (m metaTags) all(names ...string) []string {
	for _, n := range names {
		if vals := m[n]; len(vals) > 0 {
			return vals
		}
	}
	return nil
}

// ExtractHTML reads title, authors, dates, abstract, container, publisher,
// type, and DOI from an HTML page. The accessed date is taken from now.
func ExtractHTML(body []byte, pageURL string, now time.Time) (csl.Fields, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return csl.Fields{}, fmt.Errorf("parsing HTML: %w", err)
	}
	meta := readMeta(doc)
	ld := readJSONLD(doc)

	f := csl.Fields{
		URL:      pageURL,
		DOI:      htmlDOI(meta),
		Accessed: types.NewDate(now.Year(), int(now.Month()), now.Day()),
	}

	f.Title = meta.first("citation_title", "dc.title", "og:title", "twitter:title")
	if f.Title == "" {
		f.Title = doc.Find("title").First().Text()
	}

	f.Authors = htmlAuthors(meta, ld)

	f.Issued = meta.first("citation_publication_date", "citation_date",
		"article:published_time", "article:modified_time", "dc.date", "date")
	if f.Issued == "" {
		f.Issued = ld.datePublished
	}

	f.Abstract = meta.first("description", "og:description", "dc.description", "citation_abstract")

	siteName := meta.first("og:site_name")
	f.ContainerTitle = meta.first("citation_journal_title")
	if f.ContainerTitle == "" {
		f.ContainerTitle = siteName
	}
	if f.ContainerTitle == "" {
		f.ContainerTitle = ld.publisher
	}

	f.Publisher = meta.first("citation_publisher")
	if f.Publisher == "" {
		f.Publisher = siteName
	}
	if f.Publisher == "" {
		f.Publisher = ld.publisher
	}

	switch {
	case strings.EqualFold(meta.first("og:type"), "article"):
		f.Type = types.TypeArticleNewspaper
	case meta.first("citation_journal_title") != "":
		f.Type = types.TypeArticleJournal
	default:
		f.Type = types.TypeWebpage
	}
	return f, nil
}

func htmlDOI(meta metaTags) string {
	if d := meta.first("citation_doi"); d != "" {
		if found := identifier.DOIFromText(d); found != "" {
			return found
		}
		return identifier.StripDOIResolver(d)
	}
	for _, v := range meta.all("dc.identifier", "prism.doi") {
		if d := identifier.DOIFromText(v); d != "" {
			return d
		}
	}
	return ""
}

func htmlAuthors(meta metaTags, ld jsonLD) string {
	for _, key := range []string{"citation_author", "dc.creator", "author", "article:author"} {
		var names []string
		for _, v := range meta[key] {
			if isURL(v) {
				continue
			}
			names = append(names, v)
		}
		if len(names) > 0 {
			return strings.Join(names, "; ")
		}
	}
	return strings.Join(ld.authors, "; ")
}

func isURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// jsonLD holds the schema.org fields used as a last resort.
type jsonLD struct {
	authors       []string
	datePublished string
	publisher     string
}

// readJSONLD scans every application/ld+json block, including @graph
// arrays, and keeps the first value seen for each field.
func readJSONLD(doc *goquery.Document) jsonLD {
	var out jsonLD
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return
		}
		walkLD(v, &out)
	})
	return out
}

func walkLD(v any, out *jsonLD) {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			walkLD(item, out)
		}
	case map[string]any:
		if graph, ok := node["@graph"]; ok {
			walkLD(graph, out)
		}
		if len(out.authors) == 0 {
			out.authors = ldNames(node["author"])
		}
		if out.datePublished == "" {
			out.datePublished, _ = node["datePublished"].(string)
		}
		if out.publisher == "" {
			if names := ldNames(node["publisher"]); len(names) > 0 {
				out.publisher = names[0]
			}
		}
	}
}

// ldNames reads a schema.org Person/Organization reference: a string, an
// object with "name", or a list of either.
func ldNames(v any) []string {
	switch node := v.(type) {
	case string:
		if s := strings.TrimSpace(node); s != "" && !isURL(s) {
			return []string{s}
		}
	case map[string]any:
		if name, ok := node["name"].(string); ok && strings.TrimSpace(name) != "" {
			return []string{strings.TrimSpace(name)}
		}
	case []any:
		var names []string
		for _, item := range node {
			names = append(names, ldNames(item)...)
		}
		return names
	}
	return nil
}
