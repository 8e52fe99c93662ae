// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/link2ref/pkg/types"
)

const (
	configName = "link2ref"
	envPrefix  = "LINK2REF"
)

// setDefaults registers every configuration key with its default so that
// environment variables can override keys absent from the config file.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	defaults := map[string]any{
		"http.timeout":         d.HTTP.Timeout,
		"http.user_agent":      d.HTTP.UserAgent,
		"http.alt_user_agent":  d.HTTP.AltUserAgent,
		"registry.timeout":     d.Registry.Timeout,
		"registry.rate_limit":  d.Registry.RateLimit,
		"registry.max_retries": d.Registry.MaxRetries,
		"fetch.max_bytes":      d.Fetch.MaxBytes,
		"fetch.pdf_backend":    string(d.Fetch.PDFBackend),
		"fetch.pdf_pages":      d.Fetch.PDFPages,
		"ai.url":               d.AI.URL,
		"ai.api_key":           d.AI.APIKey,
		"ai.model":             d.AI.Model,
		"ai.timeout":           d.AI.Timeout,
		"ai.max_text_length":   d.AI.MaxTextLength,
		"resolve.workers":      d.Resolve.Workers,
		"resolve.max_batch":    d.Resolve.MaxBatch,
		"format.style":         d.Format.Style,
		"format.workers":       d.Format.Workers,
		"format.timeout":       d.Format.Timeout,
		"format.locales":       d.Format.Locales,
		"store.path":           d.Store.Path,
		"log.level":            d.Log.Level,
		"log.json":             d.Log.JSON,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// readConfigFile reads cfgFile, or link2ref.yaml from the working
// directory or ~/.config/link2ref/. A missing default file is not an error.
func readConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", configName))
		}
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// loadConfig merges defaults, the config file, LINK2REF_* environment
// variables, and bound flags into a Config. pdf.backend overrides
// fetch.pdf_backend when set.
func loadConfig(v *viper.Viper) (types.Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if b := v.GetString("pdf.backend"); b != "" {
		c.Fetch.PDFBackend = types.PDFBackend(b)
	}
	switch c.Fetch.PDFBackend {
	case types.PDFBackendNative, types.PDFBackendPdftotext, types.PDFBackendAuto:
	default:
		return types.Config{}, fmt.Errorf("unknown pdf backend %q (want native, pdftotext, or auto)", c.Fetch.PDFBackend)
	}
	return c, nil
}
