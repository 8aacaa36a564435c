package main

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects the encoding for machine-readable command output
type OutputFormat string

const (
	// TextFormat is the human-oriented default
	TextFormat OutputFormat = "text"
	// JSONFormat encodes output as indented JSON
	JSONFormat OutputFormat = "json"
	// YAMLFormat encodes output as YAML
	YAMLFormat OutputFormat = "yaml"
)

// encodeOutput renders v in the requested machine-readable format. Text is
// not handled here; callers print their own text layout.
func encodeOutput(v interface{}, format OutputFormat) (string, error) {
	switch format {
	case JSONFormat:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case YAMLFormat:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected json or yaml)", format)
	}
}
