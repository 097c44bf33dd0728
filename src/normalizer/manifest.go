package normalizer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dataprep/src/config"
)

// Manifest records where every output image came from
type Manifest struct {
	Name       string        `yaml:"name"`
	Source     string        `yaml:"source"`
	Method     config.Method `yaml:"method"`
	Resolution int           `yaml:"resolution"`
	Images     []Entry       `yaml:"images"`
}

// WriteManifest writes <output_root>/<name>/manifest.yaml, replacing any
// earlier version from the same run.
func (n *Normalizer) WriteManifest(result *Result) error {
	m := Manifest{
		Name:       n.cfg.Name,
		Source:     n.cfg.FolderPath,
		Method:     n.cfg.Method,
		Resolution: n.cfg.Resolution,
		Images:     result.Entries,
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(n.cfg.ManifestPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// ReadManifest parses a manifest written by WriteManifest
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}
