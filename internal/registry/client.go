// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry looks up bibliographic records in the DOI content
// negotiation service and the arXiv Atom API.
package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/link2ref/internal/httputil"
	"github.com/pdiddy/link2ref/internal/metrics"
	"github.com/pdiddy/link2ref/pkg/types"
)

// maxBodyBytes bounds a registry response body.
const maxBodyBytes = 4 << 20

// client holds the transport settings shared by the DOI and arXiv clients.
type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	userAgent  string
	maxRetries int
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// Option configures a registry client.
type Option func(*client)

// WithBaseURL overrides the registry endpoint (for testing).
func WithBaseURL(url string) Option {
	return func(c *client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithRateLimit sets the sustained request rate per second. Zero or a
// negative value disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithTimeout bounds each lookup, including retries.
func WithTimeout(d time.Duration) Option {
	return func(c *client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *client) { c.userAgent = ua }
}

// WithMaxRetries sets the number of retries after throttled responses.
func WithMaxRetries(n int) Option {
	return func(c *client) { c.maxRetries = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *client) { c.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *client) { c.metrics = m }
}

// FromConfig translates configuration into client options.
func FromConfig(h types.HTTPConfig, r types.RegistryConfig) []Option {
	return []Option{
		WithUserAgent(h.UserAgent),
		WithTimeout(r.Timeout),
		WithRateLimit(r.RateLimit),
		WithMaxRetries(r.MaxRetries),
	}
}

func newClient(baseURL string, opts []Option) client {
	def := types.DefaultConfig()
	c := client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    def.Registry.Timeout,
		userAgent:  def.HTTP.UserAgent,
		maxRetries: def.Registry.MaxRetries,
		logger:     zap.NewNop(),
	}
	WithRateLimit(def.Registry.RateLimit)(&c)
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// get performs a rate-limited GET bounded by the client timeout and returns
// the body of a 2xx response. Every other outcome is a *ProviderError.
func (c *client) get(ctx context.Context, provider, id, url, accept string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ProviderError{Provider: provider, ID: id, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := httputil.Do(ctx, c.httpClient, req, httputil.Policy{
		Limiter:    c.limiter,
		MaxRetries: c.maxRetries,
	})
	if err != nil {
		c.metrics.ProviderRequest(provider, metrics.ResultError)
		c.logger.Debug("registry request failed", zap.String("provider", provider), zap.String("id", id), zap.Error(err))
		return nil, &ProviderError{Provider: provider, ID: id, Err: err}
	}
	defer httputil.Drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		pe := &ProviderError{Provider: provider, ID: id, StatusCode: resp.StatusCode}
		switch {
		case IsNotFound(pe):
			pe.Err = ErrNotFound
			c.metrics.ProviderRequest(provider, metrics.ResultMiss)
		case IsRateLimited(pe):
			c.metrics.ProviderRequest(provider, metrics.ResultThrottle)
		default:
			c.metrics.ProviderRequest(provider, metrics.ResultError)
		}
		c.logger.Debug("registry returned error status", zap.String("provider", provider), zap.String("id", id), zap.Int("status", resp.StatusCode))
		return nil, pe
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.ProviderRequest(provider, metrics.ResultError)
		return nil, &ProviderError{Provider: provider, ID: id, Err: fmt.Errorf("reading response: %w", err)}
	}
	return body, nil
}
