// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the link2ref CLI.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/internal/logging"
	"github.com/pdiddy/link2ref/internal/metrics"
	"github.com/pdiddy/link2ref/internal/secrets"
	"github.com/pdiddy/link2ref/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state built in PersistentPreRunE.
var (
	v      = viper.New()
	cfg    types.Config
	logger = zap.NewNop()
	mtr    *metrics.Metrics
)

// rootCmd is the base command for the link2ref CLI.
var rootCmd = &cobra.Command{
	Use:   "link2ref",
	Short: "Turn links, DOIs, and arXiv ids into citations",
	Long: `link2ref resolves references to published works (web pages, PDFs, DOIs,
arXiv identifiers) into CSL records and renders them as CSL-JSON, CSL-YAML,
APA, or ABNT bibliographies.

Registry metadata is used whenever a DOI or arXiv id can be found; other
documents are fetched once and their metadata is read from HTML tags or the
first pages of the PDF.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(v)
		if err != nil {
			return err
		}
		cfg = loaded

		logger = logging.Must(cfg.Log.Level, cfg.Log.JSON)
		mtr = metrics.New()

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		secrets.Apply(&cfg, s)
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Info("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		path, _ := cmd.Flags().GetString("metrics-file")
		if path == "" {
			return nil
		}
		if err := mtr.WriteFile(path); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./link2ref.yaml or ~/.config/link2ref/link2ref.yaml)")
	pf.String("secrets-dir", secrets.DefaultDir, "directory of secret files (ai-api-key, contact-email)")
	pf.String("metrics-file", "", "write Prometheus counters to this file on exit")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "log in JSON")

	v.BindPFlag("log.level", pf.Lookup("log-level"))
	v.BindPFlag("log.json", pf.Lookup("log-json"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: reading .env: %v\n", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if err := readConfigFile(v, cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	} else if used := v.ConfigFileUsed(); used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
