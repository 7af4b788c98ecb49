package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const (
	Version = "1.0.1"

	// DefaultUserAgent is the header value seeded into new sessions.
	DefaultUserAgent = "API Commander/" + Version

	DefaultSendTimeout    = 15 * time.Second
	DefaultDebounceWindow = time.Second
	DefaultNameTruncate   = 60
	DefaultMCPPort        = 9321
)

// Config holds the apicmd configuration stored in ~/.apicommander/config.json
type Config struct {
	Version          string `json:"version"`
	DataDir          string `json:"data_dir"`
	SendTimeoutSec   int    `json:"send_timeout_seconds"`
	DebounceWindowMS int    `json:"debounce_window_ms"`
	NameTruncate     int    `json:"name_truncate"`
	MCPPort          int    `json:"mcp_port"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Version:          Version,
		DataDir:          DefaultDataDir(),
		SendTimeoutSec:   int(DefaultSendTimeout / time.Second),
		DebounceWindowMS: int(DefaultDebounceWindow / time.Millisecond),
		NameTruncate:     DefaultNameTruncate,
		MCPPort:          DefaultMCPPort,
	}
}

// DefaultDataDir returns ~/.apicommander, falling back to a relative
// directory when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".apicommander"
	}
	return filepath.Join(home, ".apicommander")
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDataDir(), "config.json")
}

// Load reads and parses config from the given path.
// If the file doesn't exist, returns os.ErrNotExist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults when the
// file is missing or unreadable.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// Save writes the config to the given path atomically.
func (c *Config) Save(path string) error {
	if c == nil {
		return errors.New("config is nil")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	// Write atomically by writing to temp file then renaming
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// SendTimeout returns the configured send timeout.
func (c *Config) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutSec) * time.Second
}

// DebounceWindow returns the configured persistence quiescence window.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceWindowMS) * time.Millisecond
}

// applyDefaults fills in zero values with defaults
func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.SendTimeoutSec <= 0 {
		c.SendTimeoutSec = int(DefaultSendTimeout / time.Second)
	}
	if c.DebounceWindowMS <= 0 {
		c.DebounceWindowMS = int(DefaultDebounceWindow / time.Millisecond)
	}
	if c.NameTruncate <= 0 {
		c.NameTruncate = DefaultNameTruncate
	}
	if c.MCPPort <= 0 {
		c.MCPPort = DefaultMCPPort
	}
}
