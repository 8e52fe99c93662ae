// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package csl normalizes loosely extracted bibliographic fields into the
// canonical types.Record: whitespace, author names, partial dates, ids,
// and the title placeholder.
package csl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/link2ref/pkg/types"
)

// DefaultTitle is substituted when no title could be extracted.
const DefaultTitle = "Untitled"

// Fields holds raw candidate metadata before normalization. Authors is a
// delimited string; AuthorNames, when set, takes precedence. Issued may be
// given as a string or as an already parsed date.
type Fields struct {
	ID             string
	Type           types.WorkType
	Title          string
	Authors        string
	AuthorNames    []types.Name
	Issued         string
	IssuedDate     *types.Date
	Accessed       *types.Date
	URL            string
	DOI            string
	ContainerTitle string
	Publisher      string
	Abstract       string

	// Placeholder replaces an empty title; DefaultTitle when unset.
	Placeholder string
}

var (
	whitespace = regexp.MustCompile(`\s+`)

	institutionalKeywords = regexp.MustCompile(`(?i)\b(?:organization|organisation|commission|committee|institute|institution|foundation|association|ministry|department|agency|council|authority|bureau|office|fund|bank|university|college|school|corporation|company|group|center|centre|network|program|programme|project|service|society|academy|board|division)\b`)
	acronym               = regexp.MustCompile(`^[A-Z]{3,}$`)

	authorSeparators = regexp.MustCompile(`(?i)\s+(?:and|&)\s+|\s*;\s*|\s*\|\s*`)

	isoDate   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)
	yearMonth = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)
	bareYear  = regexp.MustCompile(`\b(\d{4})\b`)
)

// NormalizeText collapses runs of whitespace to a single space and trims.
func NormalizeText(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// IsInstitutional reports whether name looks like an organization: it
// contains an institutional keyword or is an all-uppercase acronym of three
// or more letters.
func IsInstitutional(name string) bool {
	if institutionalKeywords.MatchString(name) {
		return true
	}
	return acronym.MatchString(strings.TrimSpace(name))
}

// ParseName classifies a single author string. The zero Name is returned
// for blank input.
func ParseName(s string) types.Name {
	name := NormalizeText(s)
	if name == "" {
		return types.Name{}
	}
	if IsInstitutional(name) {
		return types.Name{Literal: name}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		given, _, _ = strings.Cut(given, ",")
		n := types.Name{Family: NormalizeText(family), Given: NormalizeText(given)}
		if n.Family == "" && n.Given != "" {
			return types.Name{Literal: n.Given}
		}
		return n
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return types.Name{Literal: parts[0]}
	}
	return types.Name{
		Given:  strings.Join(parts[:len(parts)-1], " "),
		Family: parts[len(parts)-1],
	}
}

// SplitAuthors splits a delimited author string on ";", "|", " and ", and
// " & " and classifies each piece. Blank pieces are dropped; the result is
// empty (never nil) when nothing remains.
func SplitAuthors(s string) []types.Name {
	names := []types.Name{}
	for _, part := range authorSeparators.Split(s, -1) {
		if n := ParseName(part); !n.IsEmpty() {
			names = append(names, n)
		}
	}
	return names
}

// ParseDate recognizes YYYY-MM-DD (with any trailing time), YYYY-MM, and
// then a bare four-digit year anywhere in s, in that order. Out-of-range
// components reduce precision. It returns nil when no year is found.
func ParseDate(s string) *types.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if m := isoDate.FindStringSubmatch(s); m != nil {
		return types.NewDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := yearMonth.FindStringSubmatch(s); m != nil {
		return types.NewDate(atoi(m[1]), atoi(m[2]))
	}
	if m := bareYear.FindStringSubmatch(s); m != nil {
		return types.NewDate(atoi(m[1]))
	}
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// MakeID returns prefix followed by a dash and eight random lowercase hex
// characters, e.g. "doi-3f2a9c1b".
func MakeID(prefix string) string {
	if prefix == "" {
		prefix = "ref"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + suffix[:8]
}

// Build normalizes f into a canonical record. The id is generated from
// prefix when f.ID is empty and the type defaults to webpage.
func Build(f Fields, prefix string) types.Record {
	rec := types.Record{
		ID:             f.ID,
		Type:           f.Type,
		Title:          NormalizeText(f.Title),
		URL:            strings.TrimSpace(f.URL),
		DOI:            strings.TrimSpace(f.DOI),
		ContainerTitle: NormalizeText(f.ContainerTitle),
		Publisher:      NormalizeText(f.Publisher),
		Abstract:       NormalizeText(f.Abstract),
		Accessed:       f.Accessed,
	}
	if rec.ID == "" {
		rec.ID = MakeID(prefix)
	}
	if rec.Type == "" {
		rec.Type = types.TypeWebpage
	}
	if rec.Title == "" {
		rec.Title = f.Placeholder
		if rec.Title == "" {
			rec.Title = DefaultTitle
		}
	}

	if f.AuthorNames != nil {
		rec.Author = cleanNames(f.AuthorNames)
	} else {
		rec.Author = SplitAuthors(f.Authors)
	}
	if len(rec.Author) == 0 {
		rec.Author = nil
	}

	rec.Issued = f.IssuedDate
	if rec.Issued == nil {
		rec.Issued = ParseDate(f.Issued)
	}
	return rec
}

func cleanNames(in []types.Name) []types.Name {
	out := make([]types.Name, 0, len(in))
	for _, n := range in {
		n = types.Name{
			Family:  NormalizeText(n.Family),
			Given:   NormalizeText(n.Given),
			Literal: NormalizeText(n.Literal),
		}
		if !n.IsEmpty() {
			out = append(out, n)
		}
	}
	return out
}
