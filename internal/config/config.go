package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// SupportedVersion is the only configuration schema version this build reads.
const SupportedVersion = "1"

// Config represents the complete configuration structure
type Config struct {
	Version  string         `yaml:"version" default:"1"`
	API      APIConfig      `yaml:"api"`
	AutoSave AutoSaveConfig `yaml:"autosave"`
	Auth     AuthConfig     `yaml:"auth"`
	UI       UIConfig       `yaml:"ui"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type UIConfig struct {
	Theme string `yaml:"theme" default:"dark"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

// APIConfig points the editor at the session persistence API.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url" default:"http://localhost:12600/api"`
	ResourcePath string        `yaml:"resource_path" default:"/sessions"`
	Timeout      time.Duration `yaml:"timeout" default:"10s"`
}

type AutoSaveConfig struct {
	Enabled bool          `yaml:"enabled" default:"true"`
	Delay   time.Duration `yaml:"delay" default:"5s"`
}

type AuthConfig struct {
	// Mode is one of none, token or ed25519.
	Mode           string `yaml:"mode" default:"none"`
	Header         string `yaml:"header" default:"Authorization"`
	Token          string `yaml:"token" default:""`
	PrivateKeyPath string `yaml:"private_key_path" default:"privkey.pem"`
	ChallengePath  string `yaml:"challenge_path" default:"/auth/challenge"`
}

// LoadConfig reads the YAML file at path on top of the defaults.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		return config, nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that defaults cannot make safe.
func (c *Config) Validate() error {
	if c.Version != SupportedVersion {
		return fmt.Errorf("unsupported configuration version %q (want %q)", c.Version, SupportedVersion)
	}
	if c.AutoSave.Delay <= 0 {
		return fmt.Errorf("autosave delay must be positive, got %s", c.AutoSave.Delay)
	}
	switch c.Auth.Mode {
	case AuthModeNone, AuthModeToken, AuthModeEd25519:
	default:
		return fmt.Errorf("unknown auth mode %q", c.Auth.Mode)
	}
	if c.UI.Theme != DarkTheme && c.UI.Theme != LightTheme {
		return fmt.Errorf("unknown theme %q", c.UI.Theme)
	}
	return nil
}

// ApplyEnv overrides file values with the environment, typically loaded from .env.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Auth.Token = v
		if c.Auth.Mode == AuthModeNone {
			c.Auth.Mode = AuthModeToken
		}
	}
	if v := os.Getenv(EnvPrivateKey); v != "" {
		c.Auth.PrivateKeyPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if val, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(val))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int, reflect.Int64:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
