// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package heuristic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/link2ref/internal/csl"
	"github.com/pdiddy/link2ref/pkg/types"
)

var fixedNow = time.Date(2026, time.March, 9, 15, 4, 5, 0, time.UTC)

const newsPage = `<!doctype html>
<html><head>
<title>Fallback title | Daily Planet</title>
<meta property="og:type" content="article">
<meta property="og:title" content="City Council Approves   New Budget">
<meta property="og:site_name" content="Daily Planet">
<meta property="og:description" content="The council voted 7-2.">
<meta name="author" content="Lois Lane">
<meta property="article:author" content="https://dailyplanet.example/staff/clark">
<meta property="article:published_time" content="2025-06-05T16:00:00Z">
</head><body><p>Body</p></body></html>`

func TestExtractHTMLNewsArticle(t *testing.T) {
	f, err := ExtractHTML([]byte(newsPage), "https://dailyplanet.example/budget", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, types.TypeArticleNewspaper, f.Type)
	assert.Equal(t, "City Council Approves   New Budget", f.Title)
	assert.Equal(t, "Lois Lane", f.Authors)
	assert.Equal(t, "2025-06-05T16:00:00Z", f.Issued)
	assert.Equal(t, "Daily Planet", f.ContainerTitle)
	assert.Equal(t, "Daily Planet", f.Publisher)
	assert.Equal(t, "The council voted 7-2.", f.Abstract)
	assert.Equal(t, "https://dailyplanet.example/budget", f.URL)
	assert.Empty(t, f.DOI)
	assert.Equal(t, []int{2026, 3, 9}, f.Accessed.Parts())

	rec := csl.Build(f, "web")
	assert.Equal(t, "City Council Approves New Budget", rec.Title)
	assert.Equal(t, []int{2025, 6, 5}, rec.Issued.Parts())
}

const journalPage = `<html><head>
<meta name="citation_title" content="A Study of Things">
<meta name="citation_author" content="Doe, Jane">
<meta name="citation_author" content="Roe, Richard">
<meta name="citation_publication_date" content="2021/04/01">
<meta name="citation_journal_title" content="Journal of Things">
<meta name="citation_publisher" content="Things Press">
<meta name="DC.Identifier" content="doi:10.5555/things.2021.1">
<meta property="og:site_name" content="Things Online">
</head></html>`

func TestExtractHTMLScholarly(t *testing.T) {
	f, err := ExtractHTML([]byte(journalPage), "https://things.example/a/1", fixedNow)
	require.NoError(t, err)

	assert.Equal(t, types.TypeArticleJournal, f.Type)
	assert.Equal(t, "A Study of Things", f.Title)
	assert.Equal(t, "Doe, Jane; Roe, Richard", f.Authors)
	assert.Equal(t, "Journal of Things", f.ContainerTitle)
	assert.Equal(t, "Things Press", f.Publisher)
	assert.Equal(t, "10.5555/things.2021.1", f.DOI)

	rec := csl.Build(f, "web")
	assert.Equal(t, []types.Name{{Family: "Doe", Given: "Jane"}, {Family: "Roe", Given: "Richard"}}, rec.Author)
	assert.Equal(t, 2021, rec.Issued.Year())
}

func TestExtractHTMLCitationDOIWins(t *testing.T) {
	page := `<html><head>
<meta name="citation_doi" content="https://doi.org/10.1000/first">
<meta name="dc.identifier" content="10.1000/second">
</head></html>`
	f, err := ExtractHTML([]byte(page), "https://x.example", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "10.1000/first", f.DOI)
}

func TestExtractHTMLTitleElementAndWebpage(t *testing.T) {
	page := `<html><head><title> Plain Page </title></head><body></body></html>`
	f, err := ExtractHTML([]byte(page), "https://x.example", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, " Plain Page ", f.Title)
	assert.Equal(t, types.TypeWebpage, f.Type)
	assert.Empty(t, f.Authors)
	assert.Empty(t, f.Issued)
}

func TestExtractHTMLJSONLDFallback(t *testing.T) {
	page := `<html><head>
<title>Report</title>
<script type="application/ld+json">{ not json }</script>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"WebSite","name":"Example"},
  {"@type":"NewsArticle",
   "author":[{"@type":"Person","name":"Jane Doe"},{"@type":"Person","name":"John Roe"}],
   "datePublished":"2024-11-02",
   "publisher":{"@type":"Organization","name":"Example News Group"}}
]}
</script>
</head></html>`
	f, err := ExtractHTML([]byte(page), "https://x.example", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe; John Roe", f.Authors)
	assert.Equal(t, "2024-11-02", f.Issued)
	assert.Equal(t, "Example News Group", f.Publisher)
	assert.Equal(t, "Example News Group", f.ContainerTitle)
}

func TestExtractHTMLMetaBeatsJSONLD(t *testing.T) {
	page := `<html><head>
<meta name="dc.creator" content="Meta Author">
<meta name="dc.date" content="2019">
<script type="application/ld+json">{"author":"LD Author","datePublished":"2001-01-01"}</script>
</head></html>`
	f, err := ExtractHTML([]byte(page), "https://x.example", fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "Meta Author", f.Authors)
	assert.Equal(t, "2019", f.Issued)
}

func TestExtractHTMLURLOnlyAuthorsIgnored(t *testing.T) {
	page := `<html><head>
<meta property="article:author" content="https://facebook.com/someone">
</head></html>`
	f, err := ExtractHTML([]byte(page), "https://x.example", fixedNow)
	require.NoError(t, err)
	assert.Empty(t, f.Authors)
}
