// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identifier

import (
	"errors"
	"testing"

	"github.com/pdiddy/link2ref/pkg/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"https unchanged", "https://example.com/a?b=1", "https://example.com/a?b=1"},
		{"http unchanged", "http://example.com", "http://example.com"},
		{"uppercase scheme", "HTTPS://Example.com", "HTTPS://Example.com"},
		{"doi prefix", "doi:10.1038/s41586-020-2649-2", "https://doi.org/10.1038/s41586-020-2649-2"},
		{"doi prefix with space", "DOI: 10.1000/xyz", "https://doi.org/10.1000/xyz"},
		{"bare doi", "10.1038/s41586-020-2649-2", "https://doi.org/10.1038/s41586-020-2649-2"},
		{"arxiv bare", "2301.07041", "https://arxiv.org/abs/2301.07041"},
		{"arxiv prefixed versioned", "arXiv:2301.07041v2", "https://arxiv.org/abs/2301.07041v2"},
		{"arxiv old style", "hep-th/9901001", "https://arxiv.org/abs/hep-th/9901001"},
		{"arxiv old style subject class", "math.GT/0309136", "https://arxiv.org/abs/math.GT/0309136"},
		{"arxiv old style versioned", "arXiv:cond-mat/0102536v1", "https://arxiv.org/abs/cond-mat/0102536v1"},
		{"short link host", "bit.ly/1234567", "https://bit.ly/1234567"},
		{"two letter tld host", "t.co/1234567", "https://t.co/1234567"},
		{"unknown archive", "example/1234567", "https://example/1234567"},
		{"uppercase archive", "HEP-TH/9901001", "https://HEP-TH/9901001"},
		{"lowercase subject class", "math.gt/0309136", "https://math.gt/0309136"},
		{"bare doi with trailing text", "10.1038/abc (Nature)", "https://doi.org/10.1038/abc"},
		{"bare doi with trailing period", "10.1000/xyz.", "https://doi.org/10.1000/xyz"},
		{"doi prefix with trailing text", "doi:10.1000/xyz see p. 3", "https://doi.org/10.1000/xyz"},
		{"bare host", "example.com/page", "https://example.com/page"},
		{"trimmed", "  example.com  ", "https://example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		got, err := Normalize(in)
		if got != "" {
			t.Errorf("Normalize(%q) = %q, want empty", in, got)
		}
		if err == nil || err.Error() != "Empty input" {
			t.Fatalf("Normalize(%q) error = %v, want Empty input", in, err)
		}
		if !errors.Is(err, types.ErrInvalidInput) {
			t.Errorf("error should match ErrInvalidInput")
		}
	}
}

func TestDOIFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"resolver", "https://doi.org/10.1038/s41586-020-2649-2", "10.1038/s41586-020-2649-2"},
		{"publisher path", "https://journals.example.org/doi/full/10.1145/1234567.1234568", "10.1145/1234567.1234568"},
		{"percent encoded", "https://example.org/view?id=10.1000%2Fabc.123", "10.1000/abc.123"},
		{"trailing punctuation", "https://example.org/10.5555/xyz.", "10.5555/xyz"},
		{"no doi", "https://example.com/news/story", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DOIFromURL(tt.url); got != tt.want {
				t.Errorf("DOIFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestArxivIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://arxiv.org/abs/2301.07041", "2301.07041"},
		{"https://arxiv.org/abs/2301.07041v3", "2301.07041"},
		{"https://arxiv.org/pdf/2301.07041v1.pdf", "2301.07041"},
		{"https://arxiv.org/pdf/2301.07041", "2301.07041"},
		{"https://arxiv.org/html/2406.12345v2", "2406.12345"},
		{"http://www.arxiv.org/abs/hep-th/9901001", "hep-th/9901001"},
		{"https://arxiv.org/abs/math.GT/0309136v2", "math.GT/0309136"},
		{"https://arxiv.org/abs/example/1234567", ""},
		{"https://arxiv.org/list/cs.AI/recent", ""},
		{"https://example.com/abs/2301.07041", ""},
	}
	for _, tt := range tests {
		if got := ArxivIDFromURL(tt.url); got != tt.want {
			t.Errorf("ArxivIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		locator string
		want    Kind
	}{
		{"https://doi.org/10.1000/xyz", KindDOI},
		{"https://dx.doi.org/10.1000/xyz", KindDOI},
		{"https://arxiv.org/abs/2301.07041", KindArxiv},
		{"https://example.com/", KindURL},
		{"not a url", KindUnknown},
	}
	for _, tt := range tests {
		if got := Classify(tt.locator); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.locator, got, tt.want)
		}
	}
}

func TestArxivDOIAndStrip(t *testing.T) {
	if got := ArxivDOI("2301.07041"); got != "10.48550/arXiv.2301.07041" {
		t.Errorf("ArxivDOI = %q", got)
	}
	for in, want := range map[string]string{
		"https://doi.org/10.1000/xyz": "10.1000/xyz",
		"doi:10.1000/xyz":             "10.1000/xyz",
		"10.1000/xyz":                 "10.1000/xyz",
	} {
		if got := StripDOIResolver(in); got != want {
			t.Errorf("StripDOIResolver(%q) = %q, want %q", in, got, want)
		}
	}
}
