// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package csl

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/link2ref/pkg/types"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeText("  a \n\t b   c "))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestIsInstitutional(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"World Health Organization", true},
		{"Ministry of Health", true},
		{"Harvard University", true},
		{"WHO", true},
		{"UNESCO", true},
		{"EU", false},
		{"Jane Doe", false},
		{"Schoolman", false},
	}
	for _, tt := range tests {
		if got := IsInstitutional(tt.name); got != tt.want {
			t.Errorf("IsInstitutional(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in   string
		want types.Name
	}{
		{"Jane Doe", types.Name{Family: "Doe", Given: "Jane"}},
		{"Mary Ann  Evans", types.Name{Family: "Evans", Given: "Mary Ann"}},
		{"Doe, Jane", types.Name{Family: "Doe", Given: "Jane"}},
		{"Doe, Jane, PhD", types.Name{Family: "Doe", Given: "Jane"}},
		{"Reuters", types.Name{Literal: "Reuters"}},
		{"IMF", types.Name{Literal: "IMF"}},
		{"National Science Foundation", types.Name{Literal: "National Science Foundation"}},
		{"   ", types.Name{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseName(tt.in))
		})
	}
}

func TestSplitAuthors(t *testing.T) {
	got := SplitAuthors("Jane Doe; Smith, John | WHO and Alan Turing & Ada Lovelace")
	want := []types.Name{
		{Family: "Doe", Given: "Jane"},
		{Family: "Smith", Given: "John"},
		{Literal: "WHO"},
		{Family: "Turing", Given: "Alan"},
		{Family: "Lovelace", Given: "Ada"},
	}
	assert.Equal(t, want, got)
}

func TestSplitAuthorsEmpty(t *testing.T) {
	for _, in := range []string{"", "  ", ";;", " | ; "} {
		got := SplitAuthors(in)
		require.NotNil(t, got, "input %q", in)
		assert.Empty(t, got, "input %q", in)
	}
}

func TestSplitAuthorsCaseInsensitiveAnd(t *testing.T) {
	got := SplitAuthors("Jane Doe AND John Roe")
	assert.Len(t, got, 2)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"2025-06-05T16:00:00Z", []int{2025, 6, 5}},
		{"2025-06-05", []int{2025, 6, 5}},
		{"2025-6-5", []int{2025, 6, 5}},
		{"2025-06", []int{2025, 6}},
		{"Published June 2019 in Nature", []int{2019}},
		{"2025-13-01", []int{2025}},
		{"2025-02-40", []int{2025, 2}},
		{"2023-02-31", []int{2023, 2}},
		{"2023-04-31", []int{2023, 4}},
		{"2024-02-29", []int{2024, 2, 29}},
		{"2023-02-29", []int{2023, 2}},
		{"2025", []int{2025}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d := ParseDate(tt.in)
			require.NotNil(t, d)
			assert.Equal(t, tt.want, d.Parts())
		})
	}

	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("no year here"))
	assert.Nil(t, ParseDate("12345678"))
}

func TestParseDateRoundTrip(t *testing.T) {
	inputs := []string{"2025-06-05T16:00:00Z", "2025-06", "1999", "circa 1850", "0999-01-02", "2025-13-40", "2023-02-31"}
	for _, in := range inputs {
		d := ParseDate(in)
		require.NotNil(t, d, in)
		again := ParseDate(d.String())
		require.NotNil(t, again, in)
		assert.Equal(t, d.Parts(), again.Parts(), "round trip of %q via %q", in, d.String())
		assert.Equal(t, d.String(), again.String())
	}
}

func TestMakeID(t *testing.T) {
	pattern := regexp.MustCompile(`^doi-[0-9a-f]{8}$`)
	seen := map[string]bool{}
	for range 50 {
		id := MakeID("doi")
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 45)
	assert.Regexp(t, `^ref-[0-9a-f]{8}$`, MakeID(""))
}

func TestBuild(t *testing.T) {
	accessed := types.NewDate(2026, 1, 2)
	rec := Build(Fields{
		Title:          "  A   Study \n of Things ",
		Authors:        "Jane Doe; Ministry of Health",
		Issued:         "2024-03-15",
		Accessed:       accessed,
		URL:            "https://example.com/a",
		ContainerTitle: " The  Journal ",
		Publisher:      "Example\tPress",
		Abstract:       "one\n\ntwo",
	}, "html")

	assert.Regexp(t, `^html-[0-9a-f]{8}$`, rec.ID)
	assert.Equal(t, types.TypeWebpage, rec.Type)
	assert.Equal(t, "A Study of Things", rec.Title)
	assert.Equal(t, []types.Name{{Family: "Doe", Given: "Jane"}, {Literal: "Ministry of Health"}}, rec.Author)
	assert.Equal(t, []int{2024, 3, 15}, rec.Issued.Parts())
	assert.Equal(t, accessed, rec.Accessed)
	assert.Equal(t, "The Journal", rec.ContainerTitle)
	assert.Equal(t, "Example Press", rec.Publisher)
	assert.Equal(t, "one two", rec.Abstract)
	assert.True(t, rec.Traceable())
}

func TestBuildPlaceholdersAndEmptyAuthors(t *testing.T) {
	rec := Build(Fields{URL: "https://example.com/x.pdf", Placeholder: "Untitled PDF Report"}, "pdf")
	assert.Equal(t, "Untitled PDF Report", rec.Title)
	assert.Empty(t, rec.Author)
	assert.Nil(t, rec.Issued)

	rec = Build(Fields{ID: "fixed", Type: types.TypeReport}, "x")
	assert.Equal(t, "fixed", rec.ID)
	assert.Equal(t, DefaultTitle, rec.Title)
	assert.Equal(t, types.TypeReport, rec.Type)
}

func TestBuildPrefersExplicitNames(t *testing.T) {
	rec := Build(Fields{
		Authors:     "ignored",
		AuthorNames: []types.Name{{Family: " Doe ", Given: "Jane"}, {}, {Literal: " "}},
		IssuedDate:  types.NewDate(2020),
		Issued:      "1999",
	}, "doi")
	assert.Equal(t, []types.Name{{Family: "Doe", Given: "Jane"}}, rec.Author)
	assert.Equal(t, 2020, rec.Issued.Year())
}
