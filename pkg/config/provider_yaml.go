package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements Provider for YAML configuration files.
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider.
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{filename: filename}
}

// LoadConfig loads the complete configuration from the YAML file.
func (y *YAMLProvider) LoadConfig() (*Config, error) {
	data, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing YAML config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// IsReadOnly returns true; YAML files are not modified by radsky.
func (y *YAMLProvider) IsReadOnly() bool { return true }

// Close is a no-op for YAML files.
func (y *YAMLProvider) Close() error { return nil }
