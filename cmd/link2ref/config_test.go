// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/link2ref/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), c)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LINK2REF_RESOLVE_WORKERS", "9")
	t.Setenv("LINK2REF_HTTP_TIMEOUT", "5s")
	t.Setenv("LINK2REF_FORMAT_STYLE", "apa")

	c, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, 9, c.Resolve.Workers)
	assert.Equal(t, 5*time.Second, c.HTTP.Timeout)
	assert.Equal(t, "apa", c.Format.Style)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "link2ref.yaml")
	data := `
registry:
  rate_limit: 2.5
fetch:
  pdf_backend: native
store:
  path: /tmp/refs.db
format:
  locales:
    apa: en-GB
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	v := viper.New()
	require.NoError(t, readConfigFile(v, path))
	c, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 2.5, c.Registry.RateLimit)
	assert.Equal(t, types.PDFBackendNative, c.Fetch.PDFBackend)
	assert.Equal(t, "/tmp/refs.db", c.Store.Path)
	assert.Equal(t, "en-GB", c.Format.Locales["apa"])
	assert.Equal(t, 12*time.Second, c.Registry.Timeout, "unset keys keep defaults")
}

func TestLoadConfigPDFBackendAlias(t *testing.T) {
	t.Setenv("LINK2REF_PDF_BACKEND", "pdftotext")
	c, err := loadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, types.PDFBackendPdftotext, c.Fetch.PDFBackend)
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("LINK2REF_FETCH_PDF_BACKEND", "ocr")
	_, err := loadConfig(viper.New())
	assert.ErrorContains(t, err, "unknown pdf backend")
}

func TestReadConfigFileMissingDefaultIsNotAnError(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	assert.NoError(t, readConfigFile(viper.New(), ""))
}
