// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Strategy labels which resolution path produced a record.
type Strategy string

const (
	StrategyDOI   Strategy = "doi"
	StrategyArxiv Strategy = "arxiv"
	StrategyHTML  Strategy = "html"
	StrategyPDF   Strategy = "pdf"
)

// Outcome is the immutable result of resolving one input. Exactly one of
// Record (OK) or Error (!OK) is meaningful.
type Outcome struct {
	// Input is the raw input as submitted.
	Input string `json:"input" yaml:"input"`

	// Normalized is the best-effort locator; empty when normalization failed.
	Normalized string `json:"normalized,omitempty" yaml:"normalized,omitempty"`

	OK       bool     `json:"ok" yaml:"ok"`
	Record   *Record  `json:"csl,omitempty" yaml:"csl,omitempty"`
	Strategy Strategy `json:"sourceType,omitempty" yaml:"source_type,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// Success builds a successful outcome.
func Success(input, normalized string, rec Record, strategy Strategy) Outcome {
	return Outcome{
		Input:      input,
		Normalized: normalized,
		OK:         true,
		Record:     &rec,
		Strategy:   strategy,
	}
}

// Failure builds a failed outcome. normalized may be empty.
func Failure(input, normalized string, err error) Outcome {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Outcome{
		Input:      input,
		Normalized: normalized,
		Error:      msg,
	}
}

// BatchReport aggregates the outcomes of a batch run in input order.
type BatchReport struct {
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Total    int       `json:"total" yaml:"total"`
	Success  int       `json:"success" yaml:"success"`
	Failed   int       `json:"failed" yaml:"failed"`
	Outcomes []Outcome `json:"results" yaml:"results"`
}

// NewBatchReport counts outcomes into a report.
func NewBatchReport(outcomes []Outcome) BatchReport {
	r := BatchReport{Total: len(outcomes), Outcomes: outcomes}
	for _, o := range outcomes {
		if o.OK {
			r.Success++
		} else {
			r.Failed++
		}
	}
	return r
}

// Records returns the records of successful outcomes in input order.
func (r BatchReport) Records() []Record {
	records := make([]Record, 0, r.Success)
	for _, o := range r.Outcomes {
		if o.OK && o.Record != nil {
			records = append(records, *o.Record)
		}
	}
	return records
}

// Failures returns the failed outcomes in input order.
func (r BatchReport) Failures() []Outcome {
	var failures []Outcome
	for _, o := range r.Outcomes {
		if !o.OK {
			failures = append(failures, o)
		}
	}
	return failures
}

// HasFailures reports whether any input failed.
func (r BatchReport) HasFailures() bool {
	return r.Failed > 0
}
