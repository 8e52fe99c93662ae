// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aiassist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/internal/metrics"
	"github.com/pdiddy/link2ref/pkg/types"
)

const provider = "ai"

var promptTmpl = template.Must(template.New("metadata").Parse(`Extract metadata from this academic/professional document text. Return ONLY valid JSON, no markdown, no explanation.

Required format:
{"title":"string","authors":"Last, First; Last, First","year":number or null,"publisher":"string or null","abstract":"string or null","documentType":"article|report|book|thesis"}

Rules:
- Extract only what is explicitly stated in the text
- authors in "Last, First" format separated by semicolons
- year is the publication/copyright year as a number
- If a field cannot be determined, use null
- Return ONLY the JSON object

Text:
{{.Text}}`))

// ChatBackend asks an OpenAI-compatible chat completions endpoint.
type ChatBackend struct {
	URL           string
	APIKey        string
	Model         string
	Timeout       time.Duration
	MaxTextLength int
	Client        *http.Client
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
}

// NewChatBackend builds a backend from configuration. It returns Nop when
// no endpoint is configured.
func NewChatBackend(cfg types.AIConfig, logger *zap.Logger, m *metrics.Metrics) Suggester {
	if !cfg.Enabled() {
		return Nop{}
	}
	return &ChatBackend{
		URL:           cfg.URL,
		APIKey:        cfg.APIKey,
		Model:         cfg.Model,
		Timeout:       cfg.Timeout,
		MaxTextLength: cfg.MaxTextLength,
		Logger:        logger,
		Metrics:       m,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Suggest posts the first MaxTextLength characters of text. Excerpts under
// 50 characters are not sent.
func (c *ChatBackend) Suggest(ctx context.Context, text string) (*Suggestion, error) {
	if c.URL == "" || len(strings.TrimSpace(text)) < minTextLength {
		return nil, ErrNoAnswer
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	prompt, err := renderPrompt(truncate(text, c.MaxTextLength))
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}
	body, err := json.Marshal(chatRequest{
		Model:    c.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		c.Metrics.ProviderRequest(provider, metrics.ResultError)
		logger.Debug("AI request failed", zap.Error(err))
		return nil, fmt.Errorf("calling AI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.Metrics.ProviderRequest(provider, metrics.ResultError)
		return nil, fmt.Errorf("AI API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		c.Metrics.ProviderRequest(provider, metrics.ResultError)
		return nil, fmt.Errorf("decoding AI response: %w", err)
	}
	if len(cr.Choices) == 0 {
		c.Metrics.ProviderRequest(provider, metrics.ResultMiss)
		return nil, ErrNoAnswer
	}

	s, err := ParseResponse(cr.Choices[0].Message.Content)
	if err != nil {
		c.Metrics.ProviderRequest(provider, metrics.ResultMiss)
		logger.Debug("AI answer unusable", zap.Error(err))
		return nil, err
	}
	c.Metrics.ProviderRequest(provider, metrics.ResultHit)
	return s, nil
}

func renderPrompt(text string) (string, error) {
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// truncate keeps the first n runes of s (all of s when n <= 0).
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
