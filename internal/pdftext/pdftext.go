// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext extracts plain text from the leading pages of a PDF. Two
// backends exist: a pure Go reader and the poppler pdftotext binary. The
// auto backend tries them in that order.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/link2ref/pkg/types"
)

// Extractor turns PDF bytes into text.
type Extractor interface {
	// Name identifies the backend in logs.
	Name() string

	// Extract returns the text of the first maxPages pages (all pages when
	// maxPages <= 0). Empty text is reported as types.ErrExtractionEmpty.
	Extract(ctx context.Context, data []byte, maxPages int) (string, error)
}

// New returns the extractor for a configured backend. Unknown values
// select auto.
func New(backend types.PDFBackend) Extractor {
	switch backend {
	case types.PDFBackendNative:
		return Native{}
	case types.PDFBackendPdftotext:
		return NewPdftotext()
	default:
		return Chain{Native{}, NewPdftotext()}
	}
}

// Native reads PDFs with github.com/ledongthuc/pdf.
type Native struct{}

func (Native) Name() string { return "native" }

func (Native) Extract(ctx context.Context, data []byte, maxPages int) (text string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("native PDF reader: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}

	n := reader.NumPage()
	if maxPages > 0 && maxPages < n {
		n = maxPages
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pt, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pt)
		b.WriteString("\n")
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", types.ErrExtractionEmpty
	}
	return b.String(), nil
}

// Chain tries each extractor in order and returns the first non-empty
// text. When all fail the errors are joined.
type Chain []Extractor

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Name()
	}
	return strings.Join(names, "+")
}

func (c Chain) Extract(ctx context.Context, data []byte, maxPages int) (string, error) {
	var errs []error
	for _, e := range c {
		text, err := e.Extract(ctx, data, maxPages)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = types.ErrExtractionEmpty
		}
		errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return "", types.ErrExtractionEmpty
	}
	return "", errors.Join(errs...)
}
