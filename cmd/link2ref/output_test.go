// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/link2ref/internal/format"
	"github.com/pdiddy/link2ref/pkg/types"
)

func sampleReport() types.BatchReport {
	rec := types.Record{ID: "a", Type: types.TypeWebpage, Title: "A page", URL: "https://example.com/a"}
	report := types.NewBatchReport([]types.Outcome{
		types.Success("example.com/a", "https://example.com/a", rec, types.StrategyHTML),
		types.Failure("", "", errors.New("Empty input")),
	})
	report.ID = "batch-1"
	return report
}

func TestPrintBatchPlain(t *testing.T) {
	report := sampleReport()
	out := format.Output{Style: format.StyleAPA, Kind: format.KindText, Entries: []string{"A page. https://example.com/a"}, Records: report.Records()}

	var stdout, stderr bytes.Buffer
	require.NoError(t, printBatch(&stdout, &stderr, report, out, false))

	assert.Contains(t, stdout.String(), "A page. https://example.com/a")
	assert.Contains(t, stderr.String(), "failed:  (Empty input)")
	assert.Contains(t, stderr.String(), "1 resolved, 1 failed, batch batch-1")
}

func TestPrintBatchJSON(t *testing.T) {
	report := sampleReport()
	out := format.Output{Style: format.StyleCSLJSON, Kind: format.KindJSON, Records: report.Records()}

	var stdout, stderr bytes.Buffer
	require.NoError(t, printBatch(&stdout, &stderr, report, out, true))
	assert.Empty(t, stderr.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "csl_json", got["format"])
	assert.Equal(t, "json", got["outputType"])
	assert.Equal(t, "batch-1", got["batchId"])
	assert.EqualValues(t, 2, got["total"])
	assert.EqualValues(t, 1, got["failed"])
	assert.Len(t, got["csl"], 1)
	assert.Len(t, got["results"], 2)
}
