// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pdiddy/link2ref/pkg/types"
)

const binPdftotext = "pdftotext"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// Pdftotext shells out to poppler's pdftotext, reading the document on
// stdin and the text on stdout.
type Pdftotext struct {
	exec executor
}

// NewPdftotext returns the pdftotext backend.
func NewPdftotext() *Pdftotext {
	return &Pdftotext{exec: osExecutor{}}
}

func (p *Pdftotext) Name() string { return binPdftotext }

// Available reports whether pdftotext is on PATH.
func (p *Pdftotext) Available() bool {
	_, err := p.exec.LookPath(binPdftotext)
	return err == nil
}

func (p *Pdftotext) Extract(ctx context.Context, data []byte, maxPages int) (string, error) {
	if !p.Available() {
		return "", fmt.Errorf("%s not found on PATH", binPdftotext)
	}

	args := []string{"-q", "-enc", "UTF-8"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(maxPages))
	}
	args = append(args, "-", "-")

	var out bytes.Buffer
	if err := p.exec.RunPiped(ctx, binPdftotext, args, bytes.NewReader(data), &out); err != nil {
		return "", fmt.Errorf("running %s: %w", binPdftotext, err)
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", types.ErrExtractionEmpty
	}
	return out.String(), nil
}
