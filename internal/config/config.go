// Package config loads the fabricbd settings file: device inventory path,
// SSH credentials profile, Redis address, concurrency cap, consolidation
// confidence floor, per-spine capacity, and timeouts (spec.md §3 "YAML-based
// settings").
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfidenceFloor = 0.6
	DefaultConcurrencyCap  = 64
	DefaultPerSpineCap     = 0 // 0 = unbounded
)

// Settings is the on-disk fabricbd configuration, loaded from
// ~/.fabricbd/settings.yaml unless overridden (teacher pkg/settings.Settings
// shape, ported from JSON to YAML per this project's settings format choice).
type Settings struct {
	InventoryPath string `yaml:"inventory_path,omitempty"`

	SSHUser     string `yaml:"ssh_user,omitempty"`
	SSHPassword string `yaml:"ssh_password,omitempty"`
	SSHPort     int    `yaml:"ssh_port,omitempty"`

	RedisAddr string `yaml:"redis_addr,omitempty"`

	ConcurrencyCap  int     `yaml:"concurrency_cap,omitempty"`
	ConfidenceFloor float64 `yaml:"confidence_floor,omitempty"`
	PerSpineCap     int     `yaml:"per_spine_cap,omitempty"`

	DialTimeout       time.Duration `yaml:"dial_timeout,omitempty"`
	CommandTimeout    time.Duration `yaml:"command_timeout,omitempty"`
	DeviceTimeout     time.Duration `yaml:"device_timeout,omitempty"`
	DeploymentTimeout time.Duration `yaml:"deployment_timeout,omitempty"`
}

// DefaultSettingsPath returns ~/.fabricbd/settings.yaml, falling back to a
// tmp path if the home directory cannot be resolved.
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/fabricbd_settings.yaml"
	}
	return filepath.Join(home, ".fabricbd", "settings.yaml")
}

// Load reads settings from the default location.
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from path, returning the defaults filled in by
// WithDefaults if the file does not exist.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.WithDefaults(), nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s.WithDefaults(), nil
}

// WithDefaults fills zero-valued fields with their documented defaults and
// returns the receiver for chaining.
func (s *Settings) WithDefaults() *Settings {
	if s.ConcurrencyCap == 0 {
		s.ConcurrencyCap = DefaultConcurrencyCap
	}
	if s.ConfidenceFloor == 0 {
		s.ConfidenceFloor = DefaultConfidenceFloor
	}
	if s.SSHPort == 0 {
		s.SSHPort = 22
	}
	if s.DialTimeout == 0 {
		s.DialTimeout = 30 * time.Second
	}
	if s.CommandTimeout == 0 {
		s.CommandTimeout = 30 * time.Second
	}
	if s.DeviceTimeout == 0 {
		s.DeviceTimeout = 5 * time.Minute
	}
	if s.DeploymentTimeout == 0 {
		s.DeploymentTimeout = 20 * time.Minute
	}
	if s.RedisAddr == "" {
		s.RedisAddr = "127.0.0.1:6379"
	}
	return s
}

// Save writes settings to the default location.
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to path, creating its parent directory if needed.
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
