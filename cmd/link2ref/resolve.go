// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/internal/format"
	"github.com/pdiddy/link2ref/internal/library"
	"github.com/pdiddy/link2ref/internal/resolve"
	"github.com/pdiddy/link2ref/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [inputs...]",
	Short: "Resolve URLs, DOIs, or arXiv ids into a bibliography",
	Long: `Resolve turns each input into a CSL record and prints the batch in the
requested style. Inputs come from arguments, from --file, or both; "-" reads
stdin. Blank lines and lines starting with # are ignored in input files.

Failed inputs are reported on stderr and make the command exit non-zero
after the rest of the batch has been printed.`,
	Example: `  link2ref resolve 10.1038/s41586-020-2649-2 arXiv:2301.07041
  link2ref resolve -f refs.txt -s apa --save`,
	RunE: runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.StringP("file", "f", "", `read inputs from file, one per line ("-" for stdin)`)
	f.StringP("style", "s", "", "output style: csl_json, csl_yaml, apa, abnt")
	f.Bool("save", false, "save the batch to the library")
	f.Bool("json", false, "print a JSON envelope with records and outcomes")
	f.Bool("local", false, "render prose styles locally without the DOI registry")
	f.Int("workers", 0, "inputs resolved concurrently")

	v.BindPFlag("resolve.workers", f.Lookup("workers"))

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	inputs := append([]string(nil), args...)
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		fromFile, err := readInputFile(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		inputs = append(inputs, fromFile...)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("provide one or more inputs (URLs, DOIs, or arXiv ids) or --file")
	}

	localOnly, _ := cmd.Flags().GetBool("local")
	asJSON, _ := cmd.Flags().GetBool("json")
	save, _ := cmd.Flags().GetBool("save")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resolver, formatter := newPipeline(cfg, localOnly)
	run := batchRun{
		resolver:  resolver,
		formatter: formatter,
		local:     newFormatter(cfg, nil, true),
		style:     formatter.ParseStyle(styleFlag(cmd)),
		asJSON:    asJSON,
	}
	if save {
		run.save = saveReport
	}
	return run.run(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), inputs)
}

// batchRun resolves, saves, formats and prints one batch. local renders
// the entries formatter left empty after an interrupt.
type batchRun struct {
	resolver  *resolve.Resolver
	formatter *format.Formatter
	local     *format.Formatter
	style     format.Style
	asJSON    bool
	save      func(context.Context, types.BatchReport) error
}

// run prints every outcome completed before ctx is cancelled, then
// returns the cancellation error.
func (b batchRun) run(ctx context.Context, out, errOut io.Writer, inputs []string) error {
	report := b.resolver.ResolveBatch(ctx, inputs)
	logger.Info("batch resolved",
		zap.String("batch", report.ID),
		zap.Int("total", report.Total),
		zap.Int("success", report.Success),
		zap.Int("failed", report.Failed),
	)

	keep := context.WithoutCancel(ctx)
	if b.save != nil {
		if err := b.save(keep, report); err != nil {
			return err
		}
	}

	records := report.Records()
	formatted, err := b.formatter.Format(ctx, records, b.style)
	if err != nil {
		if ctx.Err() == nil {
			return fmt.Errorf("formatting batch: %w", err)
		}
		logger.Warn("interrupted while formatting, rendering the rest locally", zap.Error(err))
		if err := b.fillMissing(keep, &formatted); err != nil {
			return fmt.Errorf("formatting batch: %w", err)
		}
	}
	if err := printBatch(out, errOut, report, formatted, b.asJSON); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("batch interrupted (%d resolved, %d failed): %w", report.Success, report.Failed, err)
	}
	if report.HasFailures() {
		return fmt.Errorf("%d input(s) failed resolution", report.Failed)
	}
	return nil
}

// fillMissing renders the empty entries of out with the local formatter.
func (b batchRun) fillMissing(ctx context.Context, out *format.Output) error {
	var (
		idx     []int
		pending []types.Record
	)
	for i, e := range out.Entries {
		if e == "" {
			idx = append(idx, i)
			pending = append(pending, out.Records[i])
		}
	}
	if len(pending) == 0 {
		return nil
	}
	local := b.local
	if local == nil {
		local = format.New(format.WithLocalOnly())
	}
	rendered, err := local.Format(ctx, pending, b.style)
	if err != nil {
		return err
	}
	for j, i := range idx {
		out.Entries[i] = rendered.Entries[j]
	}
	return nil
}

// styleFlag returns --style when set, else the configured default.
func styleFlag(cmd *cobra.Command) string {
	if cmd.Flags().Changed("style") {
		s, _ := cmd.Flags().GetString("style")
		return s
	}
	return cfg.Format.Style
}

func readInputFile(stdin io.Reader, path string) ([]string, error) {
	if path == "-" {
		return resolve.ReadInputs(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()
	return resolve.ReadInputs(f)
}

func saveReport(ctx context.Context, report types.BatchReport) error {
	store, err := library.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.SaveReport(ctx, report, time.Now()); err != nil {
		return fmt.Errorf("saving batch: %w", err)
	}
	logger.Info("batch saved", zap.String("batch", report.ID), zap.String("path", cfg.Store.Path))
	return nil
}
