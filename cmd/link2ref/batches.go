// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/link2ref/internal/library"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List saved batches",
	RunE:  runBatches,
}

var batchesRmCmd = &cobra.Command{
	Use:   "rm <batch-id>",
	Short: "Delete a saved batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatchesRm,
}

func init() {
	batchesCmd.Flags().Int("limit", 20, "maximum number of batches to list (0 for all)")
	batchesCmd.Flags().Bool("json", false, "print JSON")

	batchesCmd.AddCommand(batchesRmCmd)
	rootCmd.AddCommand(batchesCmd)
}

func runBatches(cmd *cobra.Command, args []string) error {
	store, err := library.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	batches, err := store.ListBatches(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(batches)
	}

	if len(batches) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no saved batches")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tTOTAL\tOK\tFAILED")
	for _, b := range batches {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n",
			b.ID, b.CreatedAt.Local().Format(time.DateTime), b.Total, b.Success, b.Failed)
	}
	return tw.Flush()
}

func runBatchesRm(cmd *cobra.Command, args []string) error {
	store, err := library.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteBatch(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "deleted %s\n", args[0])
	return nil
}
