package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	s := Default()

	if s.Timeout() != 60*time.Second {
		t.Errorf("Timeout() = %v, want 60s", s.Timeout())
	}
	if s.DeviceDelay() != 10*time.Second {
		t.Errorf("DeviceDelay() = %v, want 10s", s.DeviceDelay())
	}
	if s.StageDelay() != 5*time.Second {
		t.Errorf("StageDelay() = %v, want 5s", s.StageDelay())
	}
	if s.HistoryDB == "" {
		t.Error("HistoryDB should have a default location")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
timeout: 120
device_delay: 3
subnet: 10.0.0.0/24
history_db: /tmp/updtrr-test.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.TimeoutSeconds != 120 {
		t.Errorf("TimeoutSeconds = %d, want 120", s.TimeoutSeconds)
	}
	if s.DeviceDelaySeconds != 3 {
		t.Errorf("DeviceDelaySeconds = %d, want 3", s.DeviceDelaySeconds)
	}
	if s.Subnet != "10.0.0.0/24" {
		t.Errorf("Subnet = %q", s.Subnet)
	}
	// Unset file keys keep their defaults.
	if s.StageDelaySeconds != 5 {
		t.Errorf("StageDelaySeconds = %d, want default 5", s.StageDelaySeconds)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want default 60", s.TimeoutSeconds)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("timeout: 120\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("UPDTRR_TIMEOUT", "30")
	t.Setenv("UPDTRR_SUBNET", "192.168.7.0/24")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, environment must win over the file", s.TimeoutSeconds)
	}
	if s.Subnet != "192.168.7.0/24" {
		t.Errorf("Subnet = %q", s.Subnet)
	}
}

func TestBadEnvValue(t *testing.T) {
	t.Setenv("UPDTRR_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load() should reject a non-numeric timeout")
	}
	if !strings.Contains(err.Error(), "UPDTRR_TIMEOUT") {
		t.Errorf("error %q should name the variable", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero timeout", func(s *Settings) { s.TimeoutSeconds = 0 }},
		{"negative device delay", func(s *Settings) { s.DeviceDelaySeconds = -1 }},
		{"negative stage delay", func(s *Settings) { s.StageDelaySeconds = -5 }},
		{"zero scan timeout", func(s *Settings) { s.ScanTimeoutSeconds = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			if err := s.validate(); err == nil {
				t.Error("validate() should fail")
			}
		})
	}
}
