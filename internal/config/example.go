package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const exampleHeader = "# Session Editor Configuration Example\n# Copy this file to config.yaml and customize as needed\n\n"

// ExampleYAML renders the default configuration as a commented YAML file.
func ExampleYAML() ([]byte, error) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate YAML: %w", err)
	}
	return append([]byte(exampleHeader), yamlData...), nil
}
