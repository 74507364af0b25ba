package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)

	// This test mainly ensures the function doesn't panic
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tempFile, err := os.CreateTemp("", "test-config-*.yaml")
	if err != nil {
		t.Fatalf(ErrCreateTempFileFmt, err)
	}
	t.Cleanup(func() { os.Remove(tempFile.Name()) })

	if _, err := tempFile.WriteString(content); err != nil {
		t.Fatalf(ErrWriteConfigContentFmt, err)
	}
	tempFile.Close()

	return tempFile.Name()
}

const (
	ErrCreateTempFileFmt     = "Failed to create temp file: %v"
	ErrWriteConfigContentFmt = "Failed to write config content: %v"
)

func TestApplyDefaults(t *testing.T) {
	t.Run("Config struct defaults", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)

		if config.Version != SupportedVersion {
			t.Errorf("Expected version %q, got %q", SupportedVersion, config.Version)
		}

		// API defaults
		if config.API.BaseURL != "http://localhost:12600/api" {
			t.Errorf("Expected default base URL, got %q", config.API.BaseURL)
		}
		if config.API.ResourcePath != "/sessions" {
			t.Errorf("Expected resource path '/sessions', got %q", config.API.ResourcePath)
		}
		if config.API.Timeout != 10*time.Second {
			t.Errorf("Expected timeout 10s, got %s", config.API.Timeout)
		}

		// Auto-save defaults
		if !config.AutoSave.Enabled {
			t.Error("Expected auto-save to be enabled by default")
		}
		if config.AutoSave.Delay != 5*time.Second {
			t.Errorf("Expected auto-save delay 5s, got %s", config.AutoSave.Delay)
		}

		// Auth defaults
		if config.Auth.Mode != AuthModeNone {
			t.Errorf("Expected auth mode 'none', got %q", config.Auth.Mode)
		}
		if config.Auth.Header != HAuthorization {
			t.Errorf("Expected auth header %q, got %q", HAuthorization, config.Auth.Header)
		}
		if config.Auth.Token != "" {
			t.Errorf("Expected empty token, got %q", config.Auth.Token)
		}

		if config.Logging.Level != "info" {
			t.Errorf("Expected log level 'info', got %q", config.Logging.Level)
		}
	})

	t.Run("Custom struct with all types", func(t *testing.T) {
		type TestStruct struct {
			StringField   string        `default:"test-string"`
			BoolField     bool          `default:"true"`
			IntField      int           `default:"42"`
			Float64Field  float64       `default:"3.14"`
			DurationField time.Duration `default:"1m30s"`
			SliceField    []string      `default:"a,b,c"`
			NoDefault     string
		}

		test := &TestStruct{}
		applyDefaults(test)

		if test.StringField != "test-string" {
			t.Errorf("Expected string field 'test-string', got %q", test.StringField)
		}
		if !test.BoolField {
			t.Error("Expected bool field to be true")
		}
		if test.IntField != 42 {
			t.Errorf("Expected int field 42, got %d", test.IntField)
		}
		if test.Float64Field != 3.14 {
			t.Errorf("Expected float64 field 3.14, got %f", test.Float64Field)
		}
		if test.DurationField != 90*time.Second {
			t.Errorf("Expected duration field 1m30s, got %s", test.DurationField)
		}
		expectedSlice := []string{"a", "b", "c"}
		if !reflect.DeepEqual(test.SliceField, expectedSlice) {
			t.Errorf("Expected slice %v, got %v", expectedSlice, test.SliceField)
		}
		if test.NoDefault != "" {
			t.Errorf("Expected no default field to be empty, got %q", test.NoDefault)
		}
	})

	t.Run("Invalid default values", func(t *testing.T) {
		type InvalidStruct struct {
			BadBool     bool          `default:"not-a-bool"`
			BadInt      int           `default:"not-an-int"`
			BadDuration time.Duration `default:"soon"`
		}

		test := &InvalidStruct{}
		applyDefaults(test) // Should not panic

		if test.BadBool {
			t.Error("Expected invalid bool default to remain false")
		}
		if test.BadInt != 0 {
			t.Errorf("Expected invalid int default to remain 0, got %d", test.BadInt)
		}
		if test.BadDuration != 0 {
			t.Errorf("Expected invalid duration default to remain 0, got %s", test.BadDuration)
		}
	})

	t.Run("Non-struct input", func(t *testing.T) {
		stringVar := "test"
		applyDefaults(&stringVar)
		applyDefaults(stringVar)
		applyDefaults(42)
		applyDefaults(nil)
	})
}

func TestLoadConfig(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	t.Run("Load non-existent config file", func(t *testing.T) {
		cfg, err := LoadConfig("non-existent-config.yaml")
		if err != nil {
			t.Errorf("Expected no error for non-existent config file, got %v", err)
		}
		if cfg == nil {
			t.Fatal("Expected config with defaults")
		}
		if cfg.AutoSave.Delay != 5*time.Second {
			t.Errorf("Expected default delay, got %s", cfg.AutoSave.Delay)
		}
	})

	t.Run("Partial config with defaults", func(t *testing.T) {
		path := writeTempConfig(t, `
version: "1"
api:
  base_url: "https://sessions.example.com/api"
autosave:
  delay: 2s
auth:
  mode: token
  token: "abc"
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("Expected no error loading partial config, got %v", err)
		}

		if cfg.API.BaseURL != "https://sessions.example.com/api" {
			t.Errorf("Expected base URL override, got %q", cfg.API.BaseURL)
		}
		if cfg.AutoSave.Delay != 2*time.Second {
			t.Errorf("Expected delay 2s, got %s", cfg.AutoSave.Delay)
		}
		if cfg.Auth.Mode != AuthModeToken || cfg.Auth.Token != "abc" {
			t.Errorf("Expected token auth, got %q/%q", cfg.Auth.Mode, cfg.Auth.Token)
		}

		// Unspecified fields keep their defaults
		if cfg.API.ResourcePath != "/sessions" {
			t.Errorf("Expected default resource path, got %q", cfg.API.ResourcePath)
		}
		if !cfg.AutoSave.Enabled {
			t.Error("Expected auto-save to stay enabled")
		}
	})

	t.Run("Load invalid YAML file", func(t *testing.T) {
		path := writeTempConfig(t, `
api:
  base_url: "x"
  invalid yaml syntax [
`)

		_, err := LoadConfig(path)
		if err == nil {
			t.Fatal("Expected error loading invalid config file")
		}
		if !strings.Contains(err.Error(), "failed to parse config file") {
			t.Errorf("Expected parse error, got %v", err)
		}
	})
}

func TestInvalidConfigValidation(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	testCases := []struct {
		name        string
		filename    string
		content     string
		expectError bool
		errorText   string
	}{
		{
			name:        "Invalid version",
			filename:    "testdata/invalid_version.yaml",
			expectError: true,
			errorText:   "unsupported configuration version",
		},
		{
			name:        "Valid defaults file",
			filename:    "testdata/defaults.yaml",
			expectError: false,
		},
		{
			name:        "Zero delay",
			content:     "version: \"1\"\nautosave:\n  delay: 0s\n",
			expectError: true,
			errorText:   "autosave delay must be positive",
		},
		{
			name:        "Unknown auth mode",
			content:     "version: \"1\"\nauth:\n  mode: oauth\n",
			expectError: true,
			errorText:   "unknown auth mode",
		},
		{
			name:        "Unknown theme",
			content:     "version: \"1\"\nui:\n  theme: solarized\n",
			expectError: true,
			errorText:   "unknown theme",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := tc.filename
			if tc.content != "" {
				path = writeTempConfig(t, tc.content)
			}

			_, err := LoadConfig(path)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tc.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
			if tc.expectError && err != nil && !strings.Contains(err.Error(), tc.errorText) {
				t.Errorf("Expected error to contain %q, got %q", tc.errorText, err.Error())
			}
		})
	}
}

// TestConfigDefaultsGoldenFile checks that the defaults match testdata/defaults.yaml
func TestConfigDefaultsGoldenFile(t *testing.T) {
	goldenData, err := os.ReadFile("testdata/defaults.yaml")
	if err != nil {
		t.Fatalf("Failed to read golden defaults file: %v", err)
	}

	var goldenConfig Config
	if err := yaml.Unmarshal(goldenData, &goldenConfig); err != nil {
		t.Fatalf("Failed to parse golden config: %v", err)
	}

	testConfig := &Config{}
	ApplyDefaults(testConfig)

	if !reflect.DeepEqual(*testConfig, goldenConfig) {
		t.Errorf("Defaults drifted from golden file:\n got %+v\nwant %+v", *testConfig, goldenConfig)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://env.example.com")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvLogLevel, "debug")

	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.ApplyEnv()

	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("Expected env base URL, got %q", cfg.API.BaseURL)
	}
	if cfg.Auth.Token != "env-token" {
		t.Errorf("Expected env token, got %q", cfg.Auth.Token)
	}
	if cfg.Auth.Mode != AuthModeToken {
		t.Errorf("Expected token mode to be switched on by env token, got %q", cfg.Auth.Mode)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected env log level, got %q", cfg.Logging.Level)
	}
}

func TestConstants(t *testing.T) {
	t.Run("Path constants", func(t *testing.T) {
		if DefaultConfigFile != "config.yaml" {
			t.Errorf("Expected DefaultConfigFile 'config.yaml', got %q", DefaultConfigFile)
		}
		if ExampleConfigFile != "config.example.yaml" {
			t.Errorf("Expected ExampleConfigFile 'config.example.yaml', got %q", ExampleConfigFile)
		}
	})

	t.Run("HTTP constants", func(t *testing.T) {
		if HCType != "Content-Type" {
			t.Errorf("Expected HCType 'Content-Type', got %q", HCType)
		}
		if CTypeJSON != "application/json" {
			t.Errorf("Expected CTypeJSON 'application/json', got %q", CTypeJSON)
		}
	})
}

func TestExampleYAML(t *testing.T) {
	data, err := ExampleYAML()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(string(data), "# Session Editor Configuration Example") {
		t.Errorf("Expected header comment, got %q", string(data[:40]))
	}

	path := writeTempConfig(t, string(data))
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Expected example config to load, got %v", err)
	}

	defaults := &Config{}
	ApplyDefaults(defaults)
	if !reflect.DeepEqual(cfg, defaults) {
		t.Errorf("Example config differs from defaults:\n got %+v\nwant %+v", cfg, defaults)
	}
}
