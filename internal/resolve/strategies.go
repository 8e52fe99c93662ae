// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/internal/csl"
	"github.com/pdiddy/link2ref/internal/fetch"
	"github.com/pdiddy/link2ref/internal/heuristic"
	"github.com/pdiddy/link2ref/internal/identifier"
	"github.com/pdiddy/link2ref/internal/pdftext"
	"github.com/pdiddy/link2ref/internal/registry"
	"github.com/pdiddy/link2ref/pkg/types"
)

// rawPDFScanBytes bounds the DOI scan over undecoded PDF bytes.
const rawPDFScanBytes = 200000

// Strategy names, in chain order.
const (
	stepDOIInURL      = "doi-in-url"
	stepArxivDOI      = "arxiv-doi"
	stepArxivRegistry = "arxiv-registry"
	stepDOIResolver   = "doi-resolver"
	stepFetch         = "fetch"
)

// resolution is a record plus the label reported in the outcome.
type resolution struct {
	record   types.Record
	strategy types.Strategy
}

type doiLookup struct {
	rec types.Record
	err error
}

// attempt carries the per-input state shared by the strategies.
type attempt struct {
	r       *Resolver
	input   string
	locator string
	urlDOI  string
	arxivID string
	lookups map[string]doiLookup
}

func (r *Resolver) newAttempt(input, locator string) *attempt {
	return &attempt{
		r:       r,
		input:   input,
		locator: locator,
		urlDOI:  identifier.DOIFromURL(locator),
		arxivID: identifier.ArxivIDFromURL(locator),
		lookups: make(map[string]doiLookup),
	}
}

func (a *attempt) steps() []step[resolution] {
	return []step[resolution]{
		{stepDOIInURL, a.doiInURL},
		{stepArxivDOI, a.arxivDOI},
		{stepArxivRegistry, a.arxivRegistry},
		{stepDOIResolver, a.doiResolver},
		{stepFetch, a.fetchDocument},
	}
}

// lookupDOI queries the DOI registry once per DOI and attempt. Transient
// failures are not remembered, so a later strategy may try again.
func (a *attempt) lookupDOI(ctx context.Context, doi string) (types.Record, error) {
	key := strings.ToLower(doi)
	if c, ok := a.lookups[key]; ok {
		return c.rec, c.err
	}
	rec, err := a.r.doi.LookupCSL(ctx, doi)
	if err == nil || registry.IsNotFound(err) {
		a.lookups[key] = doiLookup{rec: rec, err: err}
	}
	return rec, err
}

func (a *attempt) doiInURL(ctx context.Context) (resolution, error) {
	if a.urlDOI == "" {
		return resolution{}, errNotApplicable
	}
	rec, err := a.lookupDOI(ctx, a.urlDOI)
	if err != nil {
		return resolution{}, err
	}
	return resolution{rec, types.StrategyDOI}, nil
}

func (a *attempt) arxivDOI(ctx context.Context) (resolution, error) {
	if a.arxivID == "" {
		return resolution{}, errNotApplicable
	}
	rec, err := a.lookupDOI(ctx, identifier.ArxivDOI(a.arxivID))
	if err != nil {
		return resolution{}, err
	}
	return resolution{rec, types.StrategyDOI}, nil
}

func (a *attempt) arxivRegistry(ctx context.Context) (resolution, error) {
	if a.arxivID == "" {
		return resolution{}, errNotApplicable
	}
	rec, err := a.r.arxiv.Lookup(ctx, a.arxivID)
	if err != nil {
		return resolution{}, err
	}
	return resolution{rec, types.StrategyArxiv}, nil
}

// doiResolver handles doi.org locators. The registry is the only source for
// them, so a failure here ends the chain.
func (a *attempt) doiResolver(ctx context.Context) (resolution, error) {
	if !identifier.IsDOIResolverURL(a.locator) {
		return resolution{}, errNotApplicable
	}
	doi := identifier.StripDOIResolver(a.locator)
	if doi == "" {
		return resolution{}, terminal(fmt.Errorf("no DOI in %s: %w", a.locator, types.ErrInvalidInput))
	}
	rec, err := a.lookupDOI(ctx, doi)
	if err != nil {
		return resolution{}, terminal(err)
	}
	return resolution{rec, types.StrategyDOI}, nil
}

// fetchDocument downloads the locator and extracts metadata from it. It is
// the last strategy, so every error it returns is terminal.
func (a *attempt) fetchDocument(ctx context.Context) (resolution, error) {
	doc, err := a.r.fetcher.Fetch(ctx, a.locator)
	if err != nil {
		var se *fetch.StatusError
		if errors.As(err, &se) && a.urlDOI != "" {
			if rec, lerr := a.lookupDOI(ctx, a.urlDOI); lerr == nil {
				return resolution{rec, types.StrategyDOI}, nil
			}
		}
		return resolution{}, terminal(err)
	}

	switch doc.Kind {
	case fetch.KindPDF:
		return a.fromPDF(ctx, doc)
	default:
		return a.fromHTML(ctx, doc)
	}
}

func (a *attempt) fromHTML(ctx context.Context, doc *fetch.Document) (resolution, error) {
	fields, err := heuristic.ExtractHTML(doc.Body, a.locator, a.r.now())
	if err != nil {
		return resolution{}, terminal(fmt.Errorf("extracting %s: %w", a.locator, err))
	}
	if fields.DOI != "" {
		rec, err := a.lookupDOI(ctx, fields.DOI)
		if err == nil {
			return resolution{rec, types.StrategyHTML}, nil
		}
		a.r.logger.Debug("page DOI lookup failed, using page metadata",
			zap.String("input", a.input), zap.String("doi", fields.DOI), zap.Error(err))
	}
	fields.URL = a.locator
	return resolution{csl.Build(fields, "web"), types.StrategyHTML}, nil
}

// fromPDF extracts text from the leading pages. A DOI found in the text or
// in the raw bytes is tried against the registry first. A PDF whose text
// cannot be read still yields a placeholder record.
func (a *attempt) fromPDF(ctx context.Context, doc *fetch.Document) (resolution, error) {
	text, err := a.r.pdf.Extract(ctx, doc.Body, a.r.pdfPages)
	if err != nil {
		a.r.logger.Debug("PDF text extraction failed",
			zap.String("input", a.input), zap.String("backend", a.r.pdf.Name()), zap.Error(err))
		text = ""
	}

	doi := identifier.DOIFromText(text)
	if doi == "" {
		raw := doc.Body
		if len(raw) > rawPDFScanBytes {
			raw = raw[:rawPDFScanBytes]
		}
		doi = identifier.DOIFromText(string(raw))
	}
	if doi != "" {
		if rec, err := a.lookupDOI(ctx, doi); err == nil {
			return resolution{rec, types.StrategyPDF}, nil
		}
	}

	fields := csl.Fields{Type: types.TypeReport, Placeholder: heuristic.PDFPlaceholder}
	if strings.TrimSpace(text) != "" {
		fields = heuristic.ExtractPDF(pdftext.Lines(text))
		if s, err := a.r.suggester.Suggest(ctx, text); err == nil {
			s.Apply(&fields)
		} else {
			a.r.logger.Debug("no AI suggestion", zap.String("input", a.input), zap.Error(err))
		}
	}
	fields.URL = a.locator
	fields.DOI = doi
	fields.Accessed = a.r.today()
	return resolution{csl.Build(fields, "pdf"), types.StrategyPDF}, nil
}
