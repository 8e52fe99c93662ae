// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pdiddy/link2ref/internal/format"
	"github.com/pdiddy/link2ref/pkg/types"
)

// envelope is the --json view of a formatted batch.
type envelope struct {
	format.Output
	BatchID string          `json:"batchId,omitempty"`
	Total   int             `json:"total"`
	Success int             `json:"success"`
	Failed  int             `json:"failed"`
	Results []types.Outcome `json:"results"`
}

// printBatch writes the formatted output for report. Plain mode writes the
// bibliography to out and failures plus a summary line to errOut.
func printBatch(out, errOut io.Writer, report types.BatchReport, formatted format.Output, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(envelope{
			Output:  formatted,
			BatchID: report.ID,
			Total:   report.Total,
			Success: report.Success,
			Failed:  report.Failed,
			Results: report.Outcomes,
		})
	}

	if err := format.Write(out, formatted); err != nil {
		return err
	}
	for _, o := range report.Failures() {
		fmt.Fprintf(errOut, "failed: %s (%s)\n", o.Input, o.Error)
	}
	fmt.Fprintf(errOut, "%d resolved, %d failed, batch %s\n", report.Success, report.Failed, report.ID)
	return nil
}
