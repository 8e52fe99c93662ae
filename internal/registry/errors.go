// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/link2ref/pkg/types"
)

// ErrNotFound indicates the registry has no record for the identifier.
var ErrNotFound = errors.New("not found in registry")

// ProviderError describes a failed registry request. It matches
// types.ErrProviderUnavailable and, when set, its underlying cause under
// errors.Is.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 for transport errors and timeouts
	ID         string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s lookup failed (%d) for %s", e.Provider, e.StatusCode, e.ID)
	case e.Err != nil:
		return fmt.Sprintf("%s lookup failed for %s: %v", e.Provider, e.ID, e.Err)
	default:
		return fmt.Sprintf("%s lookup failed for %s", e.Provider, e.ID)
	}
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{types.ErrProviderUnavailable}
	}
	return []error{types.ErrProviderUnavailable, e.Err}
}

// IsNotFound reports whether err means the registry has no such record.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var pe *ProviderError
	return errors.As(err, &pe) && (pe.StatusCode == http.StatusNotFound || pe.StatusCode == http.StatusGone)
}

// IsRateLimited reports whether err came from a throttled response that
// survived all retries.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && (pe.StatusCode == http.StatusTooManyRequests || pe.StatusCode == http.StatusServiceUnavailable)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}
