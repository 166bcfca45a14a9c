// Package config resolves updater settings from their three sources:
// built-in defaults, an optional YAML config file, and UPDTRR_* environment
// variables. Later sources win, and command-line flags (handled by the CLI
// layer) override everything here.
//
// The config file lives at $XDG_CONFIG_HOME/updtrr/config.yaml (or the
// platform equivalent). A .env file in the working directory is honored for
// the environment pass, which keeps per-fleet settings next to the firmware
// images they belong to.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appName = "updtrr"

// Settings holds every tunable the updater reads from config. Durations
// are plain seconds in the file and environment, matching how operators
// think about flash timing.
type Settings struct {
	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `yaml:"timeout"`

	// DeviceDelaySeconds is the pause between consecutive devices.
	DeviceDelaySeconds int `yaml:"device_delay"`

	// StageDelaySeconds is the pause between the www and firmware uploads.
	StageDelaySeconds int `yaml:"stage_delay"`

	// ScanTimeoutSeconds bounds mDNS discovery.
	ScanTimeoutSeconds int `yaml:"scan_timeout"`

	// Subnet is the default CIDR for subnet scans, e.g. "192.168.1.0/24".
	Subnet string `yaml:"subnet"`

	// DeviceList is the default device list file.
	DeviceList string `yaml:"device_list"`

	// HistoryDB is the SQLite file run history is recorded to. Empty
	// disables history.
	HistoryDB string `yaml:"history_db"`
}

// Default returns the built-in settings. The flash timing values match
// what AxeOS devices tolerate in practice: a 60s window for slow uploads,
// 5s for the web server to settle between uploads, 10s between devices.
func Default() Settings {
	return Settings{
		TimeoutSeconds:     60,
		DeviceDelaySeconds: 10,
		StageDelaySeconds:  5,
		ScanTimeoutSeconds: 10,
		HistoryDB:          defaultHistoryPath(),
	}
}

// Load resolves settings from defaults, the config file at path, and the
// environment, in that order. An empty path means the default location; a
// missing file at either is not an error.
func Load(path string) (Settings, error) {
	s := Default()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No config file; defaults plus environment.
		case err != nil:
			return s, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &s); err != nil {
				return s, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	// .env in the working directory feeds the environment pass. Missing
	// is fine; a present-but-broken file is reported.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return s, fmt.Errorf("load .env: %w", err)
	}

	if err := s.applyEnv(); err != nil {
		return s, err
	}

	return s, s.validate()
}

// DefaultPath returns the default config file location, or "" when no user
// config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.yaml")
}

// defaultHistoryPath places the history database under the user data
// directory, or next to the binary's working directory as a fallback.
func defaultHistoryPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName, "history.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, ".local", "share", appName, "history.db")
}

// applyEnv overrides settings from UPDTRR_* variables.
func (s *Settings) applyEnv() error {
	for _, v := range []struct {
		name string
		dst  *int
	}{
		{"UPDTRR_TIMEOUT", &s.TimeoutSeconds},
		{"UPDTRR_DEVICE_DELAY", &s.DeviceDelaySeconds},
		{"UPDTRR_STAGE_DELAY", &s.StageDelaySeconds},
		{"UPDTRR_SCAN_TIMEOUT", &s.ScanTimeoutSeconds},
	} {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number of seconds", v.name, raw)
		}
		*v.dst = n
	}

	if v := os.Getenv("UPDTRR_SUBNET"); v != "" {
		s.Subnet = v
	}
	if v := os.Getenv("UPDTRR_DEVICE_LIST"); v != "" {
		s.DeviceList = v
	}
	if v := os.Getenv("UPDTRR_HISTORY_DB"); v != "" {
		s.HistoryDB = v
	}

	return nil
}

// validate rejects values no run could work with.
func (s *Settings) validate() error {
	if s.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", s.TimeoutSeconds)
	}
	if s.DeviceDelaySeconds < 0 || s.StageDelaySeconds < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if s.ScanTimeoutSeconds <= 0 {
		return fmt.Errorf("scan timeout must be positive, got %d", s.ScanTimeoutSeconds)
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// DeviceDelay returns the inter-device pause as a duration.
func (s Settings) DeviceDelay() time.Duration {
	return time.Duration(s.DeviceDelaySeconds) * time.Second
}

// StageDelay returns the inter-stage pause as a duration.
func (s Settings) StageDelay() time.Duration {
	return time.Duration(s.StageDelaySeconds) * time.Second
}

// ScanTimeout returns the discovery timeout as a duration.
func (s Settings) ScanTimeout() time.Duration {
	return time.Duration(s.ScanTimeoutSeconds) * time.Second
}
