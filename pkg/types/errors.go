// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Error taxonomy. Provider- and component-specific error types wrap these
// sentinels so callers can classify failures with errors.Is.
var (
	// ErrInvalidInput indicates empty or unparseable input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable indicates a registry or fetch failure: non-2xx
	// status, network error, or timeout.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrExtractionEmpty indicates no usable text could be obtained.
	ErrExtractionEmpty = errors.New("no usable text")

	// ErrFormattingFailed indicates a single record could not be rendered.
	ErrFormattingFailed = errors.New("formatting failed")
)
