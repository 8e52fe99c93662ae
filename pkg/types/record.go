// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the link2ref pipeline:
// the canonical bibliographic record (CSL item), resolution outcomes, batch
// reports, configuration, and the error taxonomy.
package types

import (
	"fmt"
	"strings"
	"time"
)

// WorkType is the CSL item type of a record.
type WorkType string

const (
	TypeWebpage          WorkType = "webpage"
	TypeArticleNewspaper WorkType = "article-newspaper"
	TypeArticleJournal   WorkType = "article-journal"
	TypeReport           WorkType = "report"
	TypeBook             WorkType = "book"
	TypeThesis           WorkType = "thesis"
)

// ParseWorkType maps a loosely written document type (as returned by an AI
// suggester or a registry) to a WorkType. Unknown values map to fallback.
func ParseWorkType(s string, fallback WorkType) WorkType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "webpage", "web", "post-weblog":
		return TypeWebpage
	case "article-newspaper", "news", "newspaper":
		return TypeArticleNewspaper
	case "article-journal", "article", "journal-article", "paper":
		return TypeArticleJournal
	case "report":
		return TypeReport
	case "book", "monograph":
		return TypeBook
	case "thesis", "dissertation":
		return TypeThesis
	default:
		return fallback
	}
}

// Record is the canonical, style-agnostic bibliographic record. Field names
// follow the CSL-JSON/CSL-YAML schema so output is consumable by Pandoc and
// reference managers.
type Record struct {
	ID             string   `json:"id" yaml:"id"`
	Type           WorkType `json:"type" yaml:"type"`
	Title          string   `json:"title" yaml:"title"`
	Author         []Name   `json:"author,omitempty" yaml:"author,omitempty"`
	Issued         *Date    `json:"issued,omitempty" yaml:"issued,omitempty"`
	Accessed       *Date    `json:"accessed,omitempty" yaml:"accessed,omitempty"`
	URL            string   `json:"URL,omitempty" yaml:"URL,omitempty"`
	DOI            string   `json:"DOI,omitempty" yaml:"DOI,omitempty"`
	ContainerTitle string   `json:"container-title,omitempty" yaml:"container-title,omitempty"`
	Publisher      string   `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Abstract       string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// Traceable reports whether the record carries a URL or DOI pointing back
// to its origin.
func (r Record) Traceable() bool {
	return r.URL != "" || r.DOI != ""
}

// Name is a CSL name. A personal name sets Family and Given; an
// institutional name sets only Literal.
type Name struct {
	Family  string `json:"family,omitempty" yaml:"family,omitempty"`
	Given   string `json:"given,omitempty" yaml:"given,omitempty"`
	Literal string `json:"literal,omitempty" yaml:"literal,omitempty"`
}

// IsInstitutional reports whether the name is a literal (organization) name.
func (n Name) IsInstitutional() bool {
	return n.Literal != ""
}

// IsEmpty reports whether no part of the name is set.
func (n Name) IsEmpty() bool {
	return n.Family == "" && n.Given == "" && n.Literal == ""
}

// String renders the name in display order ("Given Family" or the literal).
func (n Name) String() string {
	if n.Literal != "" {
		return n.Literal
	}
	return strings.TrimSpace(n.Given + " " + n.Family)
}

// Date is a CSL partial date: year, year-month, or year-month-day. It is
// stored in CSL date-parts form with exactly one part list.
type Date struct {
	DateParts [][]int `json:"date-parts" yaml:"date-parts"`
}

// NewDate builds a Date from 1-3 components. Components past the first
// invalid one are dropped, so the result is always well formed; a
// non-positive year yields nil. A day is valid when it exists in its month
// ("2023-02-31" keeps only the year and month).
func NewDate(parts ...int) *Date {
	if len(parts) == 0 || parts[0] <= 0 {
		return nil
	}
	valid := []int{parts[0]}
	if len(parts) > 1 && parts[1] >= 1 && parts[1] <= 12 {
		valid = append(valid, parts[1])
		if len(parts) > 2 && parts[2] >= 1 && parts[2] <= daysIn(parts[0], parts[1]) {
			valid = append(valid, parts[2])
		}
	}
	return &Date{DateParts: [][]int{valid}}
}

// daysIn returns the number of days in month of year.
func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Parts returns the first date-parts list, or nil.
func (d *Date) Parts() []int {
	if d == nil || len(d.DateParts) == 0 {
		return nil
	}
	return d.DateParts[0]
}

// Year returns the year component, or 0 when unknown.
func (d *Date) Year() int {
	p := d.Parts()
	if len(p) == 0 {
		return 0
	}
	return p[0]
}

// Month returns the month component (1-12), or 0 when unknown.
func (d *Date) Month() int {
	p := d.Parts()
	if len(p) < 2 {
		return 0
	}
	return p[1]
}

// Day returns the day component, or 0 when unknown.
func (d *Date) Day() int {
	p := d.Parts()
	if len(p) < 3 {
		return 0
	}
	return p[2]
}

// String serializes the date as YYYY, YYYY-MM, or YYYY-MM-DD.
func (d *Date) String() string {
	p := d.Parts()
	switch len(p) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("%04d", p[0])
	case 2:
		return fmt.Sprintf("%04d-%02d", p[0], p[1])
	default:
		return fmt.Sprintf("%04d-%02d-%02d", p[0], p[1], p[2])
	}
}
