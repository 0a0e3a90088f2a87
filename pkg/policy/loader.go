package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a field configuration from a YAML or JSON file.
func LoadFile(path string) (*FieldConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field configuration %s: %w", path, err)
	}

	return Decode(data)
}

// Decode parses a YAML or JSON field configuration. Empty input decodes to
// an empty configuration.
func Decode(data []byte) (*FieldConfiguration, error) {
	var cfg FieldConfiguration

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse field configuration: %w", err)
	}

	return &cfg, nil
}

// Marshal serializes a field configuration to YAML.
func Marshal(cfg *FieldConfiguration) ([]byte, error) {
	return yaml.Marshal(cfg)
}
