// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/link2ref/internal/library"
	"github.com/pdiddy/link2ref/internal/registry"
)

var formatCmd = &cobra.Command{
	Use:   "format <batch-id>",
	Short: "Render a saved batch in another style",
	Long: `Format loads a batch saved with "resolve --save" and renders its records
again. The batch id may be abbreviated to any unique prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runFormat,
}

func init() {
	f := formatCmd.Flags()
	f.StringP("style", "s", "", "output style: csl_json, csl_yaml, apa, abnt")
	f.Bool("json", false, "print a JSON envelope with records and outcomes")
	f.Bool("local", false, "render prose styles locally without the DOI registry")

	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	store, err := library.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	report, err := store.LoadReport(ctx, args[0])
	if err != nil {
		return err
	}

	localOnly, _ := cmd.Flags().GetBool("local")
	asJSON, _ := cmd.Flags().GetBool("json")

	var doi *registry.DOIClient
	if !localOnly {
		doi = registry.NewDOIClient(append(registry.FromConfig(cfg.HTTP, cfg.Registry),
			registry.WithLogger(logger),
			registry.WithMetrics(mtr),
		)...)
	}
	formatter := newFormatter(cfg, doi, localOnly)

	formatted, err := formatter.Format(ctx, report.Records(), formatter.ParseStyle(styleFlag(cmd)))
	if err != nil {
		return fmt.Errorf("formatting batch: %w", err)
	}
	return printBatch(cmd.OutOrStdout(), cmd.ErrOrStderr(), report, formatted, asJSON)
}
