// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads a single document for metadata extraction and
// classifies it as HTML or PDF.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/internal/httputil"
	"github.com/pdiddy/link2ref/internal/metrics"
	"github.com/pdiddy/link2ref/pkg/types"
)

const (
	acceptHeader = "text/html,application/pdf,application/xhtml+xml,*/*"
	provider     = "fetch"
)

// pdfMagic is the signature every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// Kind is the classified document format.
type Kind string

const (
	KindHTML Kind = "html"
	KindPDF  Kind = "pdf"
)

// Document is a fetched response body.
type Document struct {
	// URL is the final URL after redirects.
	URL         string
	ContentType string
	Kind        Kind
	Body        []byte

	// Truncated is set when the body exceeded the size cap.
	Truncated bool
}

// StatusError is returned for non-2xx responses. It matches
// types.ErrProviderUnavailable under errors.Is.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string { return fmt.Sprintf("HTTP %d", e.StatusCode) }

func (e *StatusError) Unwrap() error { return types.ErrProviderUnavailable }

// Fetcher performs document GETs.
type Fetcher struct {
	httpClient   *http.Client
	userAgent    string
	altUserAgent string
	maxBytes     int64
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.httpClient = &http.Client{Timeout: d} }
}

// WithUserAgent sets the primary identity.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithAltUserAgent sets the identity used for the single retry after 403.
func WithAltUserAgent(ua string) Option {
	return func(f *Fetcher) { f.altUserAgent = ua }
}

// WithMaxBytes caps the body size.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// FromConfig translates configuration into fetcher options.
func FromConfig(h types.HTTPConfig, c types.FetchConfig) []Option {
	return []Option{
		WithTimeout(h.Timeout),
		WithUserAgent(h.UserAgent),
		WithAltUserAgent(h.AltUserAgent),
		WithMaxBytes(c.MaxBytes),
	}
}

// New creates a Fetcher with defaults from types.DefaultConfig.
func New(opts ...Option) *Fetcher {
	def := types.DefaultConfig()
	f := &Fetcher{
		httpClient:   &http.Client{Timeout: def.HTTP.Timeout},
		userAgent:    def.HTTP.UserAgent,
		altUserAgent: def.HTTP.AltUserAgent,
		maxBytes:     def.Fetch.MaxBytes,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	return f
}

// Fetch downloads rawURL. A 403 is retried once with the alternate user
// agent. Non-2xx responses return a *StatusError; an empty body returns an
// error matching types.ErrExtractionEmpty.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	resp, err := f.do(ctx, rawURL, f.userAgent)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusForbidden && f.altUserAgent != "" && f.altUserAgent != f.userAgent {
		httputil.Drain(resp)
		f.logger.Debug("403, retrying with alternate identity", zap.String("url", rawURL))
		resp, err = f.do(ctx, rawURL, f.altUserAgent)
		if err != nil {
			return nil, err
		}
	}
	defer httputil.Drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.metrics.ProviderRequest(provider, metrics.ResultError)
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	limit := f.maxBytes
	if limit <= 0 {
		limit = types.DefaultConfig().Fetch.MaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		f.metrics.ProviderRequest(provider, metrics.ResultError)
		return nil, fmt.Errorf("reading %s: %w: %w", rawURL, types.ErrProviderUnavailable, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		f.metrics.ProviderRequest(provider, metrics.ResultMiss)
		return nil, fmt.Errorf("fetching %s: %w", rawURL, types.ErrExtractionEmpty)
	}
	f.metrics.ProviderRequest(provider, metrics.ResultHit)

	doc := &Document{
		URL:         rawURL,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		doc.URL = resp.Request.URL.String()
	}
	if int64(len(body)) > limit {
		doc.Body = body[:limit]
		doc.Truncated = true
		f.logger.Warn("document truncated", zap.String("url", rawURL), zap.Int64("max_bytes", limit))
	}
	doc.Kind = Classify(doc.ContentType, rawURL, doc.Body)
	return doc, nil
}

func (f *Fetcher) do(ctx context.Context, rawURL, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w: %w", types.ErrInvalidInput, err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.metrics.ProviderRequest(provider, metrics.ResultError)
		return nil, fmt.Errorf("fetching %s: %w: %w", rawURL, types.ErrProviderUnavailable, err)
	}
	return resp, nil
}

// Classify decides whether a response is a PDF: by content type, by a
// ".pdf" path suffix, or by the %PDF- signature. Everything else is HTML.
func Classify(contentType, rawURL string, body []byte) Kind {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "application/pdf" {
		return KindPDF
	}
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return KindPDF
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return KindPDF
	}
	if bytes.HasPrefix(bytes.TrimLeft(body, "\x00\t\r\n "), pdfMagic) {
		return KindPDF
	}
	return KindHTML
}
