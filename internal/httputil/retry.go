// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the registry clients and
// the document fetcher.
package httputil

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseDelay is the first backoff interval after a throttled response.
const DefaultBaseDelay = 500 * time.Millisecond

// maxRetryAfter caps a server supplied Retry-After so one slow registry
// cannot stall a whole batch.
const maxRetryAfter = 5 * time.Second

// Policy controls rate limiting and retries for a single logical request.
type Policy struct {
	// Limiter, when set, is waited on before every attempt.
	Limiter *rate.Limiter

	// MaxRetries is the number of extra attempts after HTTP 429 or 503.
	// Zero disables retries.
	MaxRetries int

	// BaseDelay starts the exponential backoff; DefaultBaseDelay when zero.
	BaseDelay time.Duration
}

// Do executes req, waiting on the policy's limiter first, and retries on
// HTTP 429 (Too Many Requests) and 503 (Service Unavailable). The delay is
// the Retry-After header when the server sends one in seconds, otherwise
// BaseDelay doubled per attempt.
//
// Throttled response bodies are drained and closed before sleeping. If the
// context is cancelled while waiting the context error is returned. After
// exhausting retries the last throttled response is returned so the caller
// can report its status.
func Do(ctx context.Context, client *http.Client, req *http.Request, p Policy) (*http.Response, error) {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}

	for attempt := 0; ; attempt++ {
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}
		if !throttled(resp.StatusCode) || attempt >= p.MaxRetries {
			return resp, nil
		}

		wait := retryAfter(resp.Header.Get("Retry-After"))
		if wait == 0 {
			wait = base << attempt
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func throttled(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	d := time.Duration(secs) * time.Second
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}

// Drain discards the rest of a response body and closes it so the
// connection can be reused.
func Drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
