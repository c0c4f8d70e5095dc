// Package config manages lanshare configuration and state persistence
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/RushitSolanki/lanshare/internal/discovery"
)

const (
	// ConfigDirName is the name of the config directory
	ConfigDirName = ".lanshare"
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.json"
)

// Config holds the service configuration
type Config struct {
	// Port is the well-known UDP discovery port
	Port uint16 `json:"port"`
	// BroadcastIntervalSecs is how often presence is announced
	BroadcastIntervalSecs int `json:"broadcast_interval_secs"`
	// SweepIntervalSecs is how often the stale sweep runs
	SweepIntervalSecs int `json:"sweep_interval_secs"`
	// StaleTimeoutSecs is how long a quiet peer stays registered
	StaleTimeoutSecs int `json:"stale_timeout_secs"`
	// RelayAddr is the optional WebSocket relay listen address
	RelayAddr string `json:"relay_addr,omitempty"`
	// Verbose enables debug logging
	Verbose bool `json:"verbose"`
}

// Default returns a new Config with default values
func Default() *Config {
	return &Config{
		Port:                  discovery.DefaultPort,
		BroadcastIntervalSecs: int(discovery.DefaultBroadcastInterval / time.Second),
		SweepIntervalSecs:     int(discovery.DefaultSweepInterval / time.Second),
		StaleTimeoutSecs:      int(discovery.DefaultStaleTimeout / time.Second),
	}
}

// BroadcastInterval returns the announce cadence as a duration
func (c *Config) BroadcastInterval() time.Duration {
	return time.Duration(c.BroadcastIntervalSecs) * time.Second
}

// SweepInterval returns the sweep cadence as a duration
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSecs) * time.Second
}

// StaleTimeout returns the peer eviction timeout as a duration
func (c *Config) StaleTimeout() time.Duration {
	return time.Duration(c.StaleTimeoutSecs) * time.Second
}

// Path returns the config file path (~/.lanshare/config.json)
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName, ConfigFileName), nil
}

// Load loads configuration from disk, falling back to defaults when the
// file is absent, then applies environment overrides.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from an explicit path
func LoadFrom(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnv()
	return config, nil
}

// applyEnv lets environment variables override the file, so deployments can
// retune without editing JSON (LANSHARE_PORT, LANSHARE_STALE_TIMEOUT in
// seconds, LANSHARE_RELAY_ADDR).
func (c *Config) applyEnv() {
	if v := os.Getenv("LANSHARE_PORT"); v != "" {
		if port, err := strconv.ParseUint(v, 10, 16); err == nil {
			c.Port = uint16(port)
		}
	}
	if v := os.Getenv("LANSHARE_STALE_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.StaleTimeoutSecs = secs
		}
	}
	if v := os.Getenv("LANSHARE_RELAY_ADDR"); v != "" {
		c.RelayAddr = v
	}
}

// Save writes the configuration to disk
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
