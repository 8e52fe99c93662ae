package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout for a single request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with every request
	// (e.g. "link2ref/0.1 (mailto:someone@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// AltUserAgent is the browser-like identity used for the single retry
	// after an HTTP 403 on a document fetch.
	AltUserAgent string `json:"alt_user_agent" yaml:"alt_user_agent" mapstructure:"alt_user_agent"`
}

// RegistryConfig holds settings for the DOI and arXiv registry clients.
type RegistryConfig struct {
	// Timeout bounds a single registry lookup (default 12s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// RateLimit is the maximum number of registry requests per second.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`

	// MaxRetries is the number of retries after HTTP 429 responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// PDFBackend selects the PDF text extraction tool.
type PDFBackend string

const (
	PDFBackendNative    PDFBackend = "native"
	PDFBackendPdftotext PDFBackend = "pdftotext"
	PDFBackendAuto      PDFBackend = "auto"
)

// FetchConfig holds settings for the document fetcher.
type FetchConfig struct {
	// MaxBytes caps the size of a fetched document body.
	MaxBytes int64 `json:"max_bytes" yaml:"max_bytes" mapstructure:"max_bytes"`

	// PDFBackend selects native, pdftotext, or auto (native then pdftotext).
	PDFBackend PDFBackend `json:"pdf_backend" yaml:"pdf_backend" mapstructure:"pdf_backend"`

	// PDFPages is the number of leading pages whose text feeds the heuristics.
	PDFPages int `json:"pdf_pages" yaml:"pdf_pages" mapstructure:"pdf_pages"`
}

// AIConfig holds settings for the optional AI metadata suggester. An empty
// URL disables it.
type AIConfig struct {
	URL     string        `json:"url" yaml:"url" mapstructure:"url"`
	APIKey  string        `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model   string        `json:"model" yaml:"model" mapstructure:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxTextLength caps the excerpt sent to the provider.
	MaxTextLength int `json:"max_text_length" yaml:"max_text_length" mapstructure:"max_text_length"`
}

// Enabled reports whether an AI endpoint is configured.
func (c AIConfig) Enabled() bool {
	return c.URL != ""
}

// ResolveConfig holds settings for batch resolution.
type ResolveConfig struct {
	// Workers bounds the number of inputs resolved concurrently.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// MaxBatch caps the number of inputs accepted in one batch.
	MaxBatch int `json:"max_batch" yaml:"max_batch" mapstructure:"max_batch"`
}

// FormatConfig holds settings for the bibliography formatter. It replaces
// ambient default style/locale constants.
type FormatConfig struct {
	// Style is the default output style used for unrecognized style names.
	Style string `json:"style" yaml:"style" mapstructure:"style"`

	// Workers bounds the number of in-flight renders (default 6).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// Timeout bounds a single registry-rendered bibliography request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Locales maps a style name to the locale requested from the registry.
	Locales map[string]string `json:"locales" yaml:"locales" mapstructure:"locales"`
}

// StoreConfig holds settings for the batch library.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`
	JSON  bool   `json:"json" yaml:"json" mapstructure:"json"`
}

// Config groups all stage configurations.
type Config struct {
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	Registry RegistryConfig `json:"registry" yaml:"registry" mapstructure:"registry"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	AI       AIConfig       `json:"ai" yaml:"ai" mapstructure:"ai"`
	Resolve  ResolveConfig  `json:"resolve" yaml:"resolve" mapstructure:"resolve"`
	Format   FormatConfig   `json:"format" yaml:"format" mapstructure:"format"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when no file, environment
// variable, or flag overrides a key.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "link2ref/0.1 (mailto:example@example.com)",
			AltUserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		},
		Registry: RegistryConfig{
			Timeout:    12 * time.Second,
			RateLimit:  5,
			MaxRetries: 1,
		},
		Fetch: FetchConfig{
			MaxBytes:   20 << 20,
			PDFBackend: PDFBackendAuto,
			PDFPages:   2,
		},
		AI: AIConfig{
			Model:         "gpt-4o-mini",
			Timeout:       15 * time.Second,
			MaxTextLength: 4000,
		},
		Resolve: ResolveConfig{
			Workers:  4,
			MaxBatch: 200,
		},
		Format: FormatConfig{
			Style:   "csl_json",
			Workers: 6,
			Timeout: 10 * time.Second,
			Locales: map[string]string{
				"apa":  "en-US",
				"abnt": "pt-BR",
			},
		},
		Store: StoreConfig{
			Path: "link2ref.db",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
