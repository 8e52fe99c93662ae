// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format renders CSL records as a bibliography. Raw styles return
// the records themselves. Prose styles ask the DOI registry for a rendered
// entry when a record has a DOI and fall back to local APA and ABNT
// templates otherwise. Entries are rendered concurrently and returned in
// input order.
package format

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/internal/identifier"
	"github.com/pdiddy/link2ref/internal/metrics"
	"github.com/pdiddy/link2ref/internal/registry"
	"github.com/pdiddy/link2ref/pkg/types"
)

// BibliographyRegistry renders a DOI in a named CSL style.
type BibliographyRegistry interface {
	Bibliography(ctx context.Context, doi, style, locale string) (string, error)
}

// Output is a formatted batch. Entries holds one entry per record for
// prose styles; Records is always the input.
type Output struct {
	Style   Style          `json:"format"`
	Kind    string         `json:"outputType"`
	Entries []string       `json:"output,omitempty"`
	Records []types.Record `json:"csl"`
}

// Formatter renders records. Build it with New.
type Formatter struct {
	registry     BibliographyRegistry
	localOnly    bool
	workers      int
	timeout      time.Duration
	locales      map[string]string
	defaultStyle Style
	now          func() time.Time
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithRegistry sets the registry used for DOI records.
func WithRegistry(r BibliographyRegistry) Option {
	return func(f *Formatter) { f.registry = r }
}

// WithLocalOnly renders every entry with the local templates.
func WithLocalOnly() Option {
	return func(f *Formatter) { f.localOnly = true }
}

// WithWorkers bounds the number of in-flight renders.
func WithWorkers(n int) Option {
	return func(f *Formatter) { f.workers = n }
}

// WithTimeout bounds each registry render.
func WithTimeout(d time.Duration) Option {
	return func(f *Formatter) { f.timeout = d }
}

// WithLocales maps style names to registry locales.
func WithLocales(l map[string]string) Option {
	return func(f *Formatter) { f.locales = l }
}

// WithDefaultStyle sets the style used for unknown names in ParseStyle.
func WithDefaultStyle(s Style) Option {
	return func(f *Formatter) { f.defaultStyle = s }
}

// WithClock sets the clock used for access dates missing from records.
func WithClock(now func() time.Time) Option {
	return func(f *Formatter) { f.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(f *Formatter) { f.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Formatter) { f.metrics = m }
}

// FromConfig translates the format section into options.
func FromConfig(c types.FormatConfig) []Option {
	return []Option{
		WithWorkers(c.Workers),
		WithTimeout(c.Timeout),
		WithLocales(c.Locales),
		WithDefaultStyle(ParseStyle(c.Style, StyleCSLJSON)),
	}
}

// New builds a Formatter with defaults from types.DefaultConfig.
func New(opts ...Option) *Formatter {
	def := types.DefaultConfig().Format
	f := &Formatter{
		workers:      def.Workers,
		timeout:      def.Timeout,
		locales:      def.Locales,
		defaultStyle: StyleCSLJSON,
		now:          time.Now,
	}
	for _, o := range opts {
		o(f)
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	if f.registry == nil && !f.localOnly {
		f.registry = registry.NewDOIClient(registry.WithLogger(f.logger), registry.WithMetrics(f.metrics))
	}
	if f.workers <= 0 {
		f.workers = 1
	}
	return f
}

// ParseStyle resolves a style name against the formatter's default.
func (f *Formatter) ParseStyle(name string) Style {
	return ParseStyle(name, f.defaultStyle)
}

// Format renders records in style. Entry i always belongs to record i. If
// ctx is cancelled, entries not yet rendered stay empty and the context
// error is returned with the partial output.
func (f *Formatter) Format(ctx context.Context, records []types.Record, style Style) (Output, error) {
	out := Output{Style: style, Kind: style.Kind(), Records: records}
	if out.Records == nil {
		out.Records = []types.Record{}
	}
	if style.Raw() {
		for range records {
			f.metrics.Render(string(style), metrics.SourceRaw)
		}
		return out, nil
	}

	out.Entries = make([]string, len(records))
	p := pool.New().WithMaxGoroutines(f.workers)
	for i, rec := range records {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			out.Entries[i] = f.render(ctx, rec, style)
		})
	}
	p.Wait()
	return out, ctx.Err()
}

// render produces one entry: the registry rendering for DOI records, else
// the local template, else a placeholder.
func (f *Formatter) render(ctx context.Context, rec types.Record, style Style) string {
	if doi := RecordDOI(rec); doi != "" && !f.localOnly && f.registry != nil {
		text, err := f.registryRender(ctx, doi, style)
		if err == nil {
			f.metrics.Render(string(style), metrics.SourceRegistry)
			return text
		}
		f.logger.Debug("registry render failed, using local template",
			zap.String("doi", doi), zap.String("style", string(style)), zap.Error(err))
	}

	text, err := f.renderLocal(rec, style)
	if err != nil {
		f.logger.Warn("local render failed", zap.String("id", rec.ID), zap.Error(err))
		f.metrics.Render(string(style), metrics.SourceFallback)
		return Placeholder(rec, style)
	}
	f.metrics.Render(string(style), metrics.SourceLocal)
	return text
}

func (f *Formatter) registryRender(ctx context.Context, doi string, style Style) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return f.registry.Bibliography(ctx, doi, style.cslName(), f.locales[string(style)])
}

func (f *Formatter) renderLocal(rec types.Record, style Style) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", types.ErrFormattingFailed, p)
		}
	}()
	switch style {
	case StyleAPA:
		return APA(rec)
	case StyleABNT:
		return ABNT(rec, f.now())
	default:
		return "", fmt.Errorf("%w: no local template for %s", types.ErrFormattingFailed, style)
	}
}

// RecordDOI returns the record's DOI, or a DOI found in its URL.
func RecordDOI(rec types.Record) string {
	if rec.DOI != "" {
		return rec.DOI
	}
	return identifier.DOIFromURL(rec.URL)
}

// Placeholder is the entry used when a record cannot be rendered.
func Placeholder(rec types.Record, style Style) string {
	name := rec.Title
	for _, alt := range []string{rec.URL, rec.ID, "Untitled"} {
		if name != "" {
			break
		}
		name = alt
	}
	return fmt.Sprintf("[%s formatting failed] %s", style.label(), name)
}
