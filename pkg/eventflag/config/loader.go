package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile loads a settings document, picking the decoder by file
// extension. Supported: .yaml, .yml, .json.
func FromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FromYAML(raw)
	case ".json":
		return FromJSON(raw)
	}
	return Config{}, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
}

// FromYAML decodes and validates a yaml document.
func FromYAML(raw []byte) (Config, error) {
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return validated(New(values))
}

// FromJSON decodes and validates a json document.
func FromJSON(raw []byte) (Config, error) {
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return validated(New(values))
}

func validated(cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
