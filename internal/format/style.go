// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import "strings"

// Style is an output style name.
type Style string

const (
	StyleCSLJSON Style = "csl_json"
	StyleCSLYAML Style = "csl_yaml"
	StyleAPA     Style = "apa"
	StyleABNT    Style = "abnt"
)

// Output kinds.
const (
	KindJSON = "json"
	KindYAML = "yaml"
	KindText = "text"
)

// Styles lists every supported style.
var Styles = []Style{StyleCSLJSON, StyleCSLYAML, StyleAPA, StyleABNT}

// ParseStyle maps a style name to a Style, case-insensitively. Unknown
// names map to def, and an unknown def maps to csl_json.
func ParseStyle(name string, def Style) Style {
	s := Style(strings.ToLower(strings.TrimSpace(name)))
	if s.valid() {
		return s
	}
	if def.valid() {
		return def
	}
	return StyleCSLJSON
}

func (s Style) valid() bool {
	for _, known := range Styles {
		if s == known {
			return true
		}
	}
	return false
}

// Raw reports whether the style returns records rather than prose.
func (s Style) Raw() bool {
	return s == StyleCSLJSON || s == StyleCSLYAML
}

// Kind is the output kind of the style: json, yaml, or text.
func (s Style) Kind() string {
	switch s {
	case StyleCSLJSON:
		return KindJSON
	case StyleCSLYAML:
		return KindYAML
	default:
		return KindText
	}
}

// cslName is the name of the style in the CSL style repository, as
// requested from the DOI registry.
func (s Style) cslName() string {
	switch s {
	case StyleABNT:
		return "associacao-brasileira-de-normas-tecnicas"
	default:
		return string(s)
	}
}

// label is the style name used in placeholder entries.
func (s Style) label() string {
	return strings.ToUpper(string(s))
}
