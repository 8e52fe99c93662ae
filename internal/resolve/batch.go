// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/internal/identifier"
	"github.com/pdiddy/link2ref/pkg/types"
)

// PrepareInputs trims inputs, drops blank entries, and keeps at most max of
// the rest. It returns the kept inputs and the number dropped by the cap.
func PrepareInputs(inputs []string, max int) ([]string, int) {
	jobs := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if s := strings.TrimSpace(in); s != "" {
			jobs = append(jobs, s)
		}
	}
	if max > 0 && len(jobs) > max {
		return jobs[:max], len(jobs) - max
	}
	return jobs, 0
}

// ReadInputs reads one input per line. Lines starting with "#" are comments.
func ReadInputs(r io.Reader) ([]string, error) {
	var inputs []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading inputs: %w", err)
	}
	return inputs, nil
}

// ResolveBatch resolves inputs with a bounded pool and returns the outcomes
// in input order. Inputs not yet started when ctx is cancelled become
// Failures carrying the context error.
func (r *Resolver) ResolveBatch(ctx context.Context, inputs []string) types.BatchReport {
	jobs, dropped := PrepareInputs(inputs, r.maxBatch)
	if dropped > 0 {
		r.logger.Warn("batch capped", zap.Int("max_batch", r.maxBatch), zap.Int("dropped", dropped))
	}

	outcomes := make([]types.Outcome, len(jobs))
	p := pool.New().WithMaxGoroutines(r.workers)
	for i, in := range jobs {
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				locator, _ := identifier.Normalize(in)
				outcomes[i] = types.Failure(in, locator, err)
				return
			}
			outcomes[i] = r.Resolve(ctx, in)
		})
	}
	p.Wait()

	report := types.NewBatchReport(outcomes)
	report.ID = uuid.NewString()
	return report
}
