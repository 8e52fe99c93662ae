// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns raw inputs into CSL records. Each input runs
// through an ordered chain of named strategies (registry lookups first,
// then a document fetch with heuristic extraction) and the first strategy
// that produces a record wins. Every failure becomes a Failure outcome.
package resolve

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/internal/aiassist"
	"github.com/pdiddy/link2ref/internal/fetch"
	"github.com/pdiddy/link2ref/internal/identifier"
	"github.com/pdiddy/link2ref/internal/metrics"
	"github.com/pdiddy/link2ref/internal/pdftext"
	"github.com/pdiddy/link2ref/internal/registry"
	"github.com/pdiddy/link2ref/pkg/types"
)

// DOIRegistry looks up CSL records by DOI.
type DOIRegistry interface {
	LookupCSL(ctx context.Context, doi string) (types.Record, error)
}

// ArxivRegistry looks up CSL records by arXiv id.
type ArxivRegistry interface {
	Lookup(ctx context.Context, id string) (types.Record, error)
}

// DocumentFetcher downloads a single document.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Document, error)
}

// Resolver runs the strategy chain. Build it with New.
type Resolver struct {
	doi       DOIRegistry
	arxiv     ArxivRegistry
	fetcher   DocumentFetcher
	pdf       pdftext.Extractor
	suggester aiassist.Suggester
	now       func() time.Time
	logger    *zap.Logger
	metrics   *metrics.Metrics
	workers   int
	maxBatch  int
	pdfPages  int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDOIRegistry sets the DOI registry client.
func WithDOIRegistry(d DOIRegistry) Option {
	return func(r *Resolver) { r.doi = d }
}

// WithArxivRegistry sets the arXiv registry client.
func WithArxivRegistry(a ArxivRegistry) Option {
	return func(r *Resolver) { r.arxiv = a }
}

// WithFetcher sets the document fetcher.
func WithFetcher(f DocumentFetcher) Option {
	return func(r *Resolver) { r.fetcher = f }
}

// WithPDFExtractor sets the PDF text backend.
func WithPDFExtractor(e pdftext.Extractor) Option {
	return func(r *Resolver) { r.pdf = e }
}

// WithSuggester sets the AI metadata suggester.
func WithSuggester(s aiassist.Suggester) Option {
	return func(r *Resolver) { r.suggester = s }
}

// WithClock sets the source of the accessed date.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithWorkers bounds concurrent resolutions in a batch.
func WithWorkers(n int) Option {
	return func(r *Resolver) { r.workers = n }
}

// WithMaxBatch caps the number of inputs accepted by ResolveBatch.
func WithMaxBatch(n int) Option {
	return func(r *Resolver) { r.maxBatch = n }
}

// WithPDFPages sets how many leading PDF pages feed the heuristics.
func WithPDFPages(n int) Option {
	return func(r *Resolver) { r.pdfPages = n }
}

// FromConfig translates the resolve and fetch sections into options.
func FromConfig(cfg types.Config) []Option {
	return []Option{
		WithWorkers(cfg.Resolve.Workers),
		WithMaxBatch(cfg.Resolve.MaxBatch),
		WithPDFPages(cfg.Fetch.PDFPages),
	}
}

// New builds a Resolver. Collaborators not supplied through options use
// their production defaults.
func New(opts ...Option) *Resolver {
	def := types.DefaultConfig()
	r := &Resolver{
		now:      time.Now,
		workers:  def.Resolve.Workers,
		maxBatch: def.Resolve.MaxBatch,
		pdfPages: def.Fetch.PDFPages,
	}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.doi == nil {
		r.doi = registry.NewDOIClient(registry.WithLogger(r.logger), registry.WithMetrics(r.metrics))
	}
	if r.arxiv == nil {
		r.arxiv = registry.NewArxivClient(registry.WithLogger(r.logger), registry.WithMetrics(r.metrics))
	}
	if r.fetcher == nil {
		r.fetcher = fetch.New(fetch.WithLogger(r.logger), fetch.WithMetrics(r.metrics))
	}
	if r.pdf == nil {
		r.pdf = pdftext.New(types.PDFBackendAuto)
	}
	if r.suggester == nil {
		r.suggester = aiassist.Nop{}
	}
	if r.workers <= 0 {
		r.workers = 1
	}
	if r.maxBatch <= 0 {
		r.maxBatch = def.Resolve.MaxBatch
	}
	return r
}

// Resolve turns one raw input into an outcome. It never panics and never
// returns an error: failures are reported in the outcome.
func (r *Resolver) Resolve(ctx context.Context, input string) (out types.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("resolver panic", zap.String("input", input), zap.Any("panic", p))
			r.metrics.Resolution("", metrics.OutcomeFailure)
			out = types.Failure(input, out.Normalized, fmt.Errorf("internal error: %v", p))
		}
	}()

	locator, err := identifier.Normalize(input)
	if err != nil {
		r.metrics.Resolution("", metrics.OutcomeFailure)
		return types.Failure(input, "", err)
	}
	out.Normalized = locator

	a := r.newAttempt(input, locator)
	res, name, err := firstSuccess(ctx, a.steps(), func(name string, err error) {
		r.logger.Debug("strategy missed",
			zap.String("input", input), zap.String("strategy", name), zap.Error(err))
	})
	if err != nil {
		r.logger.Info("resolution failed",
			zap.String("input", input), zap.String("strategy", name), zap.Error(err))
		r.metrics.Resolution("", metrics.OutcomeFailure)
		return types.Failure(input, locator, err)
	}

	r.logger.Debug("resolved",
		zap.String("input", input), zap.String("strategy", name), zap.String("id", res.record.ID))
	r.metrics.Resolution(string(res.strategy), metrics.OutcomeSuccess)
	return types.Success(input, locator, res.record, res.strategy)
}

func (r *Resolver) today() *types.Date {
	t := r.now()
	return types.NewDate(t.Year(), int(t.Month()), t.Day())
}
