// Package config resolves server-identity settings from, in increasing
// precedence: built-in defaults, an optional YAML file, and optional
// environment variables (populated by internal/envconfig from a .env file
// or the process environment). No CLI flag sets any of these fields; the
// CLI only chooses the YAML file, and the port and password it takes are
// not part of Config.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the server-identity settings a YAML file or the environment
// can override.
type Config struct {
	ServerName     string `yaml:"server_name"`
	Network        string `yaml:"network"`
	MOTD           string `yaml:"motd"`
	SendQueueBound int    `yaml:"send_queue_bound"`
}

// Default returns the built-in baseline, overridable by file or env.
func Default() *Config {
	return &Config{
		ServerName:     "42.IRC",
		Network:        "42NET",
		MOTD:           "",
		SendQueueBound: 64 * 1024,
	}
}

// Load starts from Default, applies path (if non-empty), then applies any
// recognized environment variables, and returns the merged result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("IRCD_SERVER_NAME"); v != "" {
		c.ServerName = v
	}
	if v := os.Getenv("IRCD_NETWORK"); v != "" {
		c.Network = v
	}
	if v := os.Getenv("IRCD_MOTD"); v != "" {
		c.MOTD = v
	}
	if v := os.Getenv("IRCD_SEND_QUEUE_BOUND"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SendQueueBound = n
		}
	}
}
