// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/internal/csl"
	"github.com/pdiddy/link2ref/internal/identifier"
	"github.com/pdiddy/link2ref/internal/metrics"
	"github.com/pdiddy/link2ref/pkg/types"
)

// DefaultDOIBaseURL is the DOI content negotiation endpoint.
const DefaultDOIBaseURL = "https://doi.org/"

const (
	providerDOI = "doi"

	acceptCSL = "application/vnd.citationstyles.csl+json"
)

// DOIClient resolves DOIs to CSL records and registry-rendered
// bibliography entries.
type DOIClient struct {
	client
}

// NewDOIClient creates a DOI registry client.
func NewDOIClient(opts ...Option) *DOIClient {
	return &DOIClient{client: newClient(DefaultDOIBaseURL, opts)}
}

func (c *DOIClient) endpoint(doi string) string {
	base := c.baseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(doi)
}

// LookupCSL fetches the CSL-JSON record for doi. The returned record's DOI
// is the queried DOI; its URL defaults to the resolver URL.
func (c *DOIClient) LookupCSL(ctx context.Context, doi string) (types.Record, error) {
	doi = identifier.StripDOIResolver(doi)
	if doi == "" {
		return types.Record{}, fmt.Errorf("DOI lookup: %w", types.ErrInvalidInput)
	}

	body, err := c.get(ctx, providerDOI, doi, c.endpoint(doi), acceptCSL)
	if err != nil {
		return types.Record{}, err
	}

	var item registryItem
	if err := json.Unmarshal(body, &item); err != nil {
		c.metrics.ProviderRequest(providerDOI, metrics.ResultError)
		return types.Record{}, &ProviderError{Provider: providerDOI, ID: doi, Err: fmt.Errorf("decoding CSL JSON: %w", err)}
	}
	c.metrics.ProviderRequest(providerDOI, metrics.ResultHit)

	rec := item.record(doi)
	c.logger.Debug("DOI resolved", zap.String("doi", doi), zap.String("title", rec.Title))
	return rec, nil
}

// Bibliography asks the registry to render doi in a CSL style, e.g.
// style "apa" with locale "en-US". HTML entities in the response are
// decoded and surrounding whitespace is trimmed.
func (c *DOIClient) Bibliography(ctx context.Context, doi, style, locale string) (string, error) {
	doi = identifier.StripDOIResolver(doi)
	if doi == "" {
		return "", fmt.Errorf("DOI bibliography: %w", types.ErrInvalidInput)
	}

	accept := "text/x-bibliography; style=" + style
	if locale != "" {
		accept += "; locale=" + locale
	}
	body, err := c.get(ctx, providerDOI, doi, c.endpoint(doi), accept)
	if err != nil {
		return "", err
	}

	text := csl.NormalizeText(html.UnescapeString(string(body)))
	if text == "" {
		c.metrics.ProviderRequest(providerDOI, metrics.ResultMiss)
		return "", &ProviderError{Provider: providerDOI, ID: doi, Err: ErrNotFound}
	}
	c.metrics.ProviderRequest(providerDOI, metrics.ResultHit)
	return text, nil
}

// registryItem is the subset of a registry CSL-JSON document link2ref
// keeps. Registries disagree on some shapes (string vs. list titles,
// numeric vs. string date parts), so those fields decode leniently.
type registryItem struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Title          flexString     `json:"title"`
	Author         []registryName `json:"author"`
	Issued         *registryDate  `json:"issued"`
	Published      *registryDate  `json:"published"`
	PublishedPrint *registryDate  `json:"published-print"`
	PublishedOnl   *registryDate  `json:"published-online"`
	URL            string         `json:"URL"`
	ContainerTitle flexString     `json:"container-title"`
	Publisher      string         `json:"publisher"`
	Abstract       string         `json:"abstract"`
}

type registryName struct {
	Family  string `json:"family"`
	Given   string `json:"given"`
	Literal string `json:"literal"`
	Name    string `json:"name"`
}

type registryDate struct {
	DateParts [][]flexInt `json:"date-parts"`
	Raw       string      `json:"raw"`
}

var markupTags = regexp.MustCompile(`<[^>]+>`)

func (it registryItem) record(doi string) types.Record {
	names := make([]types.Name, 0, len(it.Author))
	for _, a := range it.Author {
		switch {
		case a.Family != "" || a.Given != "":
			names = append(names, types.Name{Family: a.Family, Given: a.Given})
		case a.Literal != "":
			names = append(names, types.Name{Literal: a.Literal})
		case a.Name != "":
			names = append(names, csl.ParseName(a.Name))
		}
	}

	var issued *types.Date
	for _, d := range []*registryDate{it.Issued, it.Published, it.PublishedPrint, it.PublishedOnl} {
		if issued = d.date(); issued != nil {
			break
		}
	}

	link := it.URL
	if link == "" {
		link = identifier.DOIResolverBase + doi
	}

	return csl.Build(csl.Fields{
		ID:             it.ID,
		Type:           types.ParseWorkType(it.Type, types.TypeArticleJournal),
		Title:          it.Title.String(),
		AuthorNames:    names,
		IssuedDate:     issued,
		URL:            link,
		DOI:            doi,
		ContainerTitle: it.ContainerTitle.String(),
		Publisher:      it.Publisher,
		Abstract:       html.UnescapeString(markupTags.ReplaceAllString(it.Abstract, " ")),
	}, "doi")
}

func (d *registryDate) date() *types.Date {
	if d == nil {
		return nil
	}
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		parts := make([]int, 0, 3)
		for _, p := range d.DateParts[0] {
			parts = append(parts, int(p))
		}
		if date := types.NewDate(parts...); date != nil {
			return date
		}
	}
	return csl.ParseDate(d.Raw)
}

// flexString decodes either a JSON string or a list of strings (first
// non-empty element wins).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		for _, s := range list {
			if strings.TrimSpace(s) != "" {
				*f = flexString(s)
				return nil
			}
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexString(s)
	return nil
}

func (f flexString) String() string { return string(f) }

// flexInt decodes a JSON number, a numeric string, or null (as 0).
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, _ := strconv.Atoi(strings.TrimSpace(s))
		*f = flexInt(n)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	i, err := n.Int64()
	if err != nil {
		fl, ferr := n.Float64()
		if ferr != nil {
			return ferr
		}
		i = int64(fl)
	}
	*f = flexInt(i)
	return nil
}
