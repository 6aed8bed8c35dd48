package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/tapstack/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	if cfg.TAP.Device != "tap0" {
		t.Errorf("TAP.Device = %q, want %q", cfg.TAP.Device, "tap0")
	}
	if cfg.TAP.IP != "10.3.3.3" {
		t.Errorf("TAP.IP = %q, want %q", cfg.TAP.IP, "10.3.3.3")
	}
	if cfg.TAP.FrameBudget != 100 {
		t.Errorf("TAP.FrameBudget = %d, want %d", cfg.TAP.FrameBudget, 100)
	}
	if cfg.Metrics.Addr != ":9110" {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, ":9110")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}

	if err := config.Validate(cfg); err != nil {
		t.Errorf("DefaultConfig() failed validation: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	yamlContent := `
tap:
  device: "tap7"
  ip: "192.168.1.1"
  mac: "02:00:00:00:00:01"
  frame_budget: 50
metrics:
  addr: ":9200"
  path: "/custom-metrics"
log:
  level: "debug"
  format: "text"
`
	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.TAP.Device != "tap7" {
		t.Errorf("TAP.Device = %q, want %q", cfg.TAP.Device, "tap7")
	}
	if cfg.TAP.IP != "192.168.1.1" {
		t.Errorf("TAP.IP = %q, want %q", cfg.TAP.IP, "192.168.1.1")
	}
	if cfg.TAP.FrameBudget != 50 {
		t.Errorf("TAP.FrameBudget = %d, want %d", cfg.TAP.FrameBudget, 50)
	}
	if cfg.Metrics.Path != "/custom-metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/custom-metrics")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	t.Parallel()

	yamlContent := `
tap:
  device: "tap9"
log:
  level: "warn"
`
	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.TAP.Device != "tap9" {
		t.Errorf("TAP.Device = %q, want %q", cfg.TAP.Device, "tap9")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
	// Untouched fields inherit defaults.
	if cfg.TAP.IP != "10.3.3.3" {
		t.Errorf("TAP.IP = %q, want default %q", cfg.TAP.IP, "10.3.3.3")
	}
	if cfg.Metrics.Addr != ":9110" {
		t.Errorf("Metrics.Addr = %q, want default %q", cfg.Metrics.Addr, ":9110")
	}
}

func TestValidateRejectsBadIP(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.TAP.IP = "not-an-ip"

	if err := config.Validate(cfg); err == nil {
		t.Error("Validate() = nil, want error for invalid IP")
	}
}

func TestValidateRejectsBadMAC(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.TAP.MAC = "not-a-mac"

	if err := config.Validate(cfg); err == nil {
		t.Error("Validate() = nil, want error for invalid MAC")
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"debug": "DEBUG",
		"info":  "INFO",
		"warn":  "WARN",
		"error": "ERROR",
		"bogus": "INFO",
		"":      "INFO",
	}
	for input, want := range cases {
		got := config.ParseLogLevel(input).String()
		if got != want {
			t.Errorf("ParseLogLevel(%q) = %q, want %q", input, got, want)
		}
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "tapstack.yml")

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	return path
}
