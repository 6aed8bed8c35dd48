// Package config manages tapstack daemon configuration using koanf/v2.
//
// Supports YAML files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the complete tapstack daemon configuration.
type Config struct {
	TAP     TAPConfig     `koanf:"tap"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
}

// TAPConfig describes the virtual interface and the addresses this
// stack answers for.
type TAPConfig struct {
	// Device is the TAP interface name; Validate rejects an empty name.
	Device string `koanf:"device"`
	// IP is our IPv4 address in dotted-quad form.
	IP string `koanf:"ip"`
	// MAC is our hardware address in colon-separated form.
	MAC string `koanf:"mac"`
	// VirtioNetHeader enables the 12-byte virtio-net header on every
	// frame read/written (spec §6).
	VirtioNetHeader bool `koanf:"virtio_net_header"`
	// FrameBudget is the number of frames the dispatcher processes
	// before exiting normally; 0 means unbounded.
	FrameBudget int `koanf:"frame_budget"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// IPv4 parses TAP.IP into a 4-byte array.
func (c TAPConfig) IPv4() ([4]byte, error) {
	var out [4]byte
	ip := net.ParseIP(c.IP)
	if ip == nil {
		return out, fmt.Errorf("parse tap.ip %q: %w", c.IP, ErrInvalidIP)
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return out, fmt.Errorf("tap.ip %q: %w", c.IP, ErrInvalidIP)
	}
	copy(out[:], ip4)
	return out, nil
}

// HardwareAddr parses TAP.MAC into a 6-byte array.
func (c TAPConfig) HardwareAddr() ([6]byte, error) {
	var out [6]byte
	hw, err := net.ParseMAC(c.MAC)
	if err != nil || len(hw) != 6 {
		return out, fmt.Errorf("parse tap.mac %q: %w", c.MAC, ErrInvalidMAC)
	}
	copy(out[:], hw)
	return out, nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TAP: TAPConfig{
			Device:          "tap0",
			IP:              "10.3.3.3",
			MAC:             "aa:bb:bb:00:00:dd",
			VirtioNetHeader: false,
			FrameBudget:     100,
		},
		Metrics: MetricsConfig{
			Addr: ":9110",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envPrefix is the environment variable prefix for tapstack configuration.
// Variables are named TAPSTACK_<section>_<key>, e.g. TAPSTACK_TAP_DEVICE.
const envPrefix = "TAPSTACK_"

// Load reads configuration from a YAML file at path, overlays
// environment variable overrides (TAPSTACK_ prefix), and merges on top
// of DefaultConfig(). Missing fields inherit defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load config from %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms TAPSTACK_TAP_DEVICE -> tap.device. Only the
// first underscore separates section from key, so
// TAPSTACK_TAP_FRAME_BUDGET maps to tap.frame_budget.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.Replace(s, "_", ".", 1)
}

func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"tap.device":            defaults.TAP.Device,
		"tap.ip":                defaults.TAP.IP,
		"tap.mac":               defaults.TAP.MAC,
		"tap.virtio_net_header": defaults.TAP.VirtioNetHeader,
		"tap.frame_budget":      defaults.TAP.FrameBudget,
		"metrics.addr":          defaults.Metrics.Addr,
		"metrics.path":          defaults.Metrics.Path,
		"log.level":             defaults.Log.Level,
		"log.format":            defaults.Log.Format,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}
	return nil
}

// Validation errors.
var (
	ErrInvalidIP       = errors.New("tap.ip must be a valid IPv4 address")
	ErrInvalidMAC      = errors.New("tap.mac must be a valid 6-byte hardware address")
	ErrEmptyDevice     = errors.New("tap.device must not be empty")
	ErrEmptyMetricAddr = errors.New("metrics.addr must not be empty")
	ErrNegativeBudget  = errors.New("tap.frame_budget must not be negative")
)

// Validate checks the configuration for logical errors.
func Validate(cfg *Config) error {
	if cfg.TAP.Device == "" {
		return ErrEmptyDevice
	}
	if _, err := cfg.TAP.IPv4(); err != nil {
		return err
	}
	if _, err := cfg.TAP.HardwareAddr(); err != nil {
		return err
	}
	if cfg.TAP.FrameBudget < 0 {
		return ErrNegativeBudget
	}
	if cfg.Metrics.Addr == "" {
		return ErrEmptyMetricAddr
	}
	return nil
}

// ParseLogLevel maps a configuration log level string to the
// corresponding slog.Level. Unknown values default to slog.LevelInfo.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
