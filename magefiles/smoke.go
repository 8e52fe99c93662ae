//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Smoke groups end-to-end runs of the built binary against live services.
type Smoke mg.Namespace

// smokeInputs covers each resolution strategy.
var smokeInputs = []string{
	"10.1038/s41586-020-2649-2",
	"arXiv:2301.07041",
	"https://go.dev/blog/go1.22",
}

// Resolve builds the binary and resolves the sample inputs as APA.
func (Smoke) Resolve() error {
	mg.Deps(Build)
	args := append([]string{"resolve", "--style", "apa"}, smokeInputs...)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Formats builds the binary and prints the first sample in every style.
func (Smoke) Formats() error {
	mg.Deps(Build)
	bin := filepath.Join(binDir, binName)
	for _, style := range []string{"csl_json", "csl_yaml", "apa", "abnt"} {
		if err := sh.RunV(bin, "resolve", "--style", style, smokeInputs[0]); err != nil {
			return err
		}
	}
	return nil
}
