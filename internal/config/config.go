// Package config loads client settings from an optional YAML file, with
// environment variables layered on top. Defaults target a local dev backend
// so `robotalk` works out of the box against the compose stack.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	envConfigPath = "ROBOTALK_CONFIG"
	envBackendURL = "ROBOTALK_BACKEND_URL"

	defaultBackendURL = "http://localhost:8000"
)

// Config is the full client configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Style   StyleConfig   `yaml:"style"`
	Capture CaptureConfig `yaml:"capture"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// BackendConfig locates the Robotalk API.
type BackendConfig struct {
	URL string `yaml:"url"`
}

// StyleConfig overrides the fixed generation style parameters.
type StyleConfig struct {
	Tone        string `yaml:"tone"`
	Length      string `yaml:"length"`
	Detail      string `yaml:"detail"`
	CompanyName string `yaml:"company_name"`
}

// CaptureConfig selects and tunes the audio capture device.
type CaptureConfig struct {
	// Device is "recorder" (spawn an external capture command) or "watch"
	// (pick up files an external dictation app drops into WatchDir).
	Device          string   `yaml:"device"`
	RecorderCommand []string `yaml:"recorder_command"`
	WatchDir        string   `yaml:"watch_dir"`
}

// StorageConfig selects the version-history backend.
type StorageConfig struct {
	// Backend is "file" (JSON document) or "sqlite".
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// LogConfig controls the rotating debug log.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		Backend: BackendConfig{URL: defaultBackendURL},
		Capture: CaptureConfig{
			Device:   "recorder",
			WatchDir: filepath.Join(dataDir, "inbox"),
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    filepath.Join(dataDir, "history.json"),
		},
		Log: LogConfig{
			File:       filepath.Join(dataDir, "robotalk.log"),
			MaxSizeMB:  5,
			MaxBackups: 2,
		},
	}
}

// Load reads configuration from path, or from $ROBOTALK_CONFIG, or from the
// default location, whichever is set first. A missing file yields defaults;
// a malformed file is an error the caller should surface before the TUI
// takes over the terminal.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults apply.
	default:
		return Config{}, err
	}

	if env := os.Getenv(envBackendURL); env != "" {
		cfg.Backend.URL = env
	}
	if cfg.Storage.Backend == "sqlite" && filepath.Ext(cfg.Storage.Path) == ".json" {
		cfg.Storage.Path = cfg.Storage.Path[:len(cfg.Storage.Path)-len(".json")] + ".db"
	}
	return cfg, nil
}

// DefaultPath is the conventional config file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "robotalk.yaml")
	}
	return filepath.Join(base, "robotalk", "config.yaml")
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "robotalk-data")
	}
	return filepath.Join(base, "robotalk")
}
