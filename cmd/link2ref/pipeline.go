// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/pdiddy/link2ref/internal/aiassist"
	"github.com/pdiddy/link2ref/internal/fetch"
	"github.com/pdiddy/link2ref/internal/format"
	"github.com/pdiddy/link2ref/internal/pdftext"
	"github.com/pdiddy/link2ref/internal/registry"
	"github.com/pdiddy/link2ref/internal/resolve"
	"github.com/pdiddy/link2ref/pkg/types"
)

// newFormatter builds a formatter sharing doi with the resolver when one
// is given. localOnly disables registry rendering.
func newFormatter(c types.Config, doi *registry.DOIClient, localOnly bool) *format.Formatter {
	opts := append(format.FromConfig(c.Format),
		format.WithLogger(logger),
		format.WithMetrics(mtr),
	)
	if localOnly {
		opts = append(opts, format.WithLocalOnly())
	} else if doi != nil {
		opts = append(opts, format.WithRegistry(doi))
	}
	return format.New(opts...)
}

// newPipeline wires the production clients from c.
func newPipeline(c types.Config, localOnly bool) (*resolve.Resolver, *format.Formatter) {
	regOpts := append(registry.FromConfig(c.HTTP, c.Registry),
		registry.WithLogger(logger),
		registry.WithMetrics(mtr),
	)
	doi := registry.NewDOIClient(regOpts...)
	arxiv := registry.NewArxivClient(regOpts...)

	fetcher := fetch.New(append(fetch.FromConfig(c.HTTP, c.Fetch),
		fetch.WithLogger(logger),
		fetch.WithMetrics(mtr),
	)...)

	r := resolve.New(append(resolve.FromConfig(c),
		resolve.WithDOIRegistry(doi),
		resolve.WithArxivRegistry(arxiv),
		resolve.WithFetcher(fetcher),
		resolve.WithPDFExtractor(pdftext.New(c.Fetch.PDFBackend)),
		resolve.WithSuggester(aiassist.NewChatBackend(c.AI, logger, mtr)),
		resolve.WithLogger(logger),
		resolve.WithMetrics(mtr),
	)...)

	return r, newFormatter(c, doi, localOnly)
}
