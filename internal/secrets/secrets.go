// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file is one secret: the filename is the key and the trimmed contents
// are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/link2ref/pkg/types"
)

// DefaultDir is the secrets directory read by the CLI.
const DefaultDir = ".secrets"

// Recognized key files.
const (
	KeyAIAPIKey     = "ai-api-key"
	KeyContactEmail = "contact-email"
)

var mailtoPattern = regexp.MustCompile(`mailto:[^);\s]+`)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error. Unreadable files are
// logged and skipped.
func Load(dir string, logger *zap.Logger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Apply fills configuration from loaded secrets. Values already set in cfg
// win, except that a contact email replaces the mailto address in the
// registry user agent.
func Apply(cfg *types.Config, secrets map[string]string) {
	if key := secrets[KeyAIAPIKey]; key != "" && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = key
	}
	if email := secrets[KeyContactEmail]; email != "" {
		cfg.HTTP.UserAgent = withContact(cfg.HTTP.UserAgent, email)
	}
}

// withContact puts email into the mailto part of a user agent, adding one
// when the agent has none.
func withContact(ua, email string) string {
	if mailtoPattern.MatchString(ua) {
		return mailtoPattern.ReplaceAllLiteralString(ua, "mailto:"+email)
	}
	if ua == "" {
		ua = "link2ref"
	}
	return ua + " (mailto:" + email + ")"
}
