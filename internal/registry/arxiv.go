// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/internal/csl"
	"github.com/pdiddy/link2ref/internal/identifier"
	"github.com/pdiddy/link2ref/internal/metrics"
	"github.com/pdiddy/link2ref/pkg/types"
)

// DefaultArxivBaseURL is the arXiv Atom query endpoint.
const DefaultArxivBaseURL = "https://export.arxiv.org/api/query"

const (
	providerArxiv = "arxiv"

	// arxivName is used as both publisher and container title of preprints.
	arxivName = "arXiv"
)

// ArxivClient looks up preprint metadata by arXiv id.
type ArxivClient struct {
	client
}

// NewArxivClient creates an arXiv registry client.
func NewArxivClient(opts ...Option) *ArxivClient {
	return &ArxivClient{client: newClient(DefaultArxivBaseURL, opts)}
}

// Atom feed structures. The arXiv extension namespace carries the DOI of
// the published version when one exists.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string        `xml:"id"`
	Title      string        `xml:"title"`
	Summary    string        `xml:"summary"`
	Published  string        `xml:"published"`
	Authors    []arxivAuthor `xml:"author"`
	DOI        string        `xml:"http://arxiv.org/schemas/atom doi"`
	JournalRef string        `xml:"http://arxiv.org/schemas/atom journal_ref"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// Lookup returns the record for a version-less arXiv id such as
// "2301.07041". The record is a journal article published by arXiv whose
// DOI is the published version's DOI when the feed lists one, otherwise
// the arXiv DataCite DOI.
func (c *ArxivClient) Lookup(ctx context.Context, id string) (types.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return types.Record{}, fmt.Errorf("arXiv lookup: %w", types.ErrInvalidInput)
	}

	endpoint := c.baseURL + "?id_list=" + url.QueryEscape(id)
	body, err := c.get(ctx, providerArxiv, id, endpoint, "application/atom+xml")
	if err != nil {
		return types.Record{}, err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		c.metrics.ProviderRequest(providerArxiv, metrics.ResultError)
		return types.Record{}, &ProviderError{Provider: providerArxiv, ID: id, Err: fmt.Errorf("parsing arXiv response: %w", err)}
	}

	// The API answers unknown ids with 200 and either no entries or a
	// single entry titled "Error".
	if len(feed.Entries) == 0 || strings.EqualFold(strings.TrimSpace(feed.Entries[0].Title), "error") {
		c.metrics.ProviderRequest(providerArxiv, metrics.ResultMiss)
		return types.Record{}, &ProviderError{Provider: providerArxiv, ID: id, Err: ErrNotFound}
	}
	c.metrics.ProviderRequest(providerArxiv, metrics.ResultHit)

	rec := feed.Entries[0].record(id)
	c.logger.Debug("arXiv resolved", zap.String("id", id), zap.String("title", rec.Title))
	return rec, nil
}

func (e arxivEntry) record(id string) types.Record {
	names := make([]types.Name, 0, len(e.Authors))
	for _, a := range e.Authors {
		names = append(names, csl.ParseName(a.Name))
	}

	doi := strings.TrimSpace(e.DOI)
	if doi == "" {
		doi = identifier.ArxivDOI(id)
	}

	return csl.Build(csl.Fields{
		Type:           types.TypeArticleJournal,
		Title:          e.Title,
		AuthorNames:    names,
		Issued:         e.Published,
		URL:            identifier.ArxivAbsBase + id,
		DOI:            doi,
		ContainerTitle: arxivName,
		Publisher:      arxivName,
		Abstract:       e.Summary,
	}, "arxiv")
}
