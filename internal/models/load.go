package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// LoadManifestFile reads a manifest from a JSON or YAML file. The format is
// chosen by extension (.yaml / .yml for YAML, anything else JSON).
func LoadManifestFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseManifestYAML(data)
	default:
		return ParseManifestJSON(data)
	}
}

// ParseManifestJSON decodes a manifest document and validates it.
func ParseManifestJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	// An absent version would decode as 0.0.0.
	var present struct {
		Version json.RawMessage `json:"version"`
	}
	if err := json.Unmarshal(data, &present); err == nil && present.Version == nil {
		return nil, fmt.Errorf("invalid manifest: %w", &ValidationError{Path: "version", Reason: "must be set"})
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// ParseManifestYAML decodes a YAML manifest. The document is converted to
// JSON first so both inputs share the same field names and decoding rules.
func ParseManifestYAML(data []byte) (*Manifest, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML manifest: %w", err)
	}
	return ParseManifestJSON(b)
}
