// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aiassist is the optional last-resort metadata guesser. A
// Suggester reads the early text of a document and proposes title, authors,
// year, publisher, abstract, and document type. Any error, timeout, or
// malformed answer means "no suggestion"; it never fails a resolution.
package aiassist

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/link2ref/internal/csl"
	"github.com/pdiddy/link2ref/pkg/types"
)

// minTextLength is the shortest excerpt worth sending.
const minTextLength = 50

// ErrNoAnswer is returned when the suggester has nothing usable.
var ErrNoAnswer = errors.New("no AI suggestion")

// Suggestion is a parsed AI answer. Title is always non-empty.
type Suggestion struct {
	Title        string `json:"title"`
	Authors      string `json:"authors"`
	Year         int    `json:"year"`
	Publisher    string `json:"publisher"`
	Abstract     string `json:"abstract"`
	DocumentType string `json:"documentType"`
}

// Suggester proposes metadata for a document excerpt.
type Suggester interface {
	Suggest(ctx context.Context, text string) (*Suggestion, error)
}

// Nop never answers.
type Nop struct{}

func (Nop) Suggest(context.Context, string) (*Suggestion, error) { return nil, ErrNoAnswer }

// Apply overlays the suggestion onto regex-derived fields. The title always
// wins; the other fields win when the suggestion has them.
func (s *Suggestion) Apply(f *csl.Fields) {
	if s == nil || strings.TrimSpace(s.Title) == "" {
		return
	}
	f.Title = s.Title
	if s.Authors != "" {
		f.Authors = s.Authors
		f.AuthorNames = nil
	}
	if s.Year > 0 {
		f.Issued = strconv.Itoa(s.Year)
		f.IssuedDate = nil
	}
	if s.Publisher != "" {
		f.Publisher = s.Publisher
	}
	if s.Abstract != "" {
		f.Abstract = s.Abstract
	}
	if s.DocumentType != "" {
		fallback := f.Type
		if fallback == "" {
			fallback = types.TypeReport
		}
		f.Type = types.ParseWorkType(s.DocumentType, fallback)
	}
}

var codeFence = regexp.MustCompile("```(?:json)?\\s*\\n?")

// rawSuggestion mirrors the answer shape with loose field types.
type rawSuggestion struct {
	Title        any `json:"title"`
	Authors      any `json:"authors"`
	Year         any `json:"year"`
	Publisher    any `json:"publisher"`
	Abstract     any `json:"abstract"`
	DocumentType any `json:"documentType"`
}

// ParseResponse extracts the single JSON object from a model answer. Code
// fences are removed and the text between the first "{" and the last "}"
// is decoded. Non-string fields are ignored; a missing title is no answer.
func ParseResponse(content string) (*Suggestion, error) {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(content, ""))
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, ErrNoAnswer
	}

	var raw rawSuggestion
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
		return nil, errors.Join(ErrNoAnswer, err)
	}

	s := &Suggestion{
		Title:        str(raw.Title),
		Authors:      str(raw.Authors),
		Year:         year(raw.Year),
		Publisher:    str(raw.Publisher),
		Abstract:     str(raw.Abstract),
		DocumentType: str(raw.DocumentType),
	}
	if s.Title == "" {
		return nil, ErrNoAnswer
	}
	return s, nil
}

func str(v any) string {
	s, _ := v.(string)
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

func year(v any) int {
	switch y := v.(type) {
	case float64:
		if y >= 1000 && y <= 9999 {
			return int(y)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(y)); err == nil && n >= 1000 && n <= 9999 {
			return n
		}
	}
	return 0
}
