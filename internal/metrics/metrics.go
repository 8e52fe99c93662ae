// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts resolutions, provider requests, and renders on a
// private Prometheus registry. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for provider requests.
const (
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultError    = "error"
	ResultThrottle = "throttled"
)

// Outcome labels for resolutions.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Source labels for renders.
const (
	SourceRaw      = "raw"
	SourceRegistry = "registry"
	SourceLocal    = "local"
	SourceFallback = "placeholder"
)

// Metrics holds the link2ref counters.
type Metrics struct {
	registry *prometheus.Registry

	resolutions      *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	renders          *prometheus.CounterVec
}

// New creates the counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		resolutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "link2ref_resolutions_total",
				Help: "Resolved inputs by winning strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		providerRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "link2ref_provider_requests_total",
				Help: "Requests to external providers by provider and result",
			},
			[]string{"provider", "result"},
		),
		renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "link2ref_renders_total",
				Help: "Rendered bibliography entries by style and source",
			},
			[]string{"style", "source"},
		),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Resolution counts one finished input.
func (m *Metrics) Resolution(strategy, outcome string) {
	if m == nil {
		return
	}
	if strategy == "" {
		strategy = "none"
	}
	m.resolutions.WithLabelValues(strategy, outcome).Inc()
}

// ProviderRequest counts one call to a registry, fetch target, or AI backend.
func (m *Metrics) ProviderRequest(provider, result string) {
	if m == nil {
		return
	}
	m.providerRequests.WithLabelValues(provider, result).Inc()
}

// Render counts one rendered entry.
func (m *Metrics) Render(style, source string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(style, source).Inc()
}

// WriteFile dumps all counters in the Prometheus text format, suitable for
// the node_exporter textfile collector.
func (m *Metrics) WriteFile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
