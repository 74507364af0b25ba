package config

const (
	DefaultConfigFile = "config.yaml"
	ExampleConfigFile = "config.example.yaml"
)
