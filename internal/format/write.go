// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Write prints an output in its kind: a CSL-JSON array, a CSL-YAML list,
// or one prose entry per paragraph.
func Write(w io.Writer, out Output) error {
	switch out.Kind {
	case KindJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(out.Records)
	case KindYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(out.Records)
	default:
		if len(out.Entries) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, strings.Join(out.Entries, "\n\n"))
		return err
	}
}
