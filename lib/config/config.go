// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable Load reads the config path from.
const EnvVar = "CONVOSNIFFER_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for a workstation running the game locally.
	Development Environment = "development"
	// Production is for an unattended deployment (stream machines).
	Production Environment = "production"
)

// Config is the control plane configuration.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	Server ServerConfig `yaml:"server"`
	Bus    BusConfig    `yaml:"bus"`
	Viewer ViewerConfig `yaml:"viewer"`
	Log    LogConfig    `yaml:"log"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *Overrides `yaml:"development,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides contains the sections that can be overridden per
// environment. Zero-valued fields leave the base value alone.
type Overrides struct {
	Server *ServerConfig `yaml:"server,omitempty"`
	Bus    *BusConfig    `yaml:"bus,omitempty"`
	Viewer *ViewerConfig `yaml:"viewer,omitempty"`
	Log    *LogConfig    `yaml:"log,omitempty"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Address is the TCP listen address. The game controller
	// connects to port 21830.
	// Default: 0.0.0.0:21830
	Address string `yaml:"address"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes caps controller request bodies.
	// Default: 1 MiB
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// BusConfig configures the notification bus.
type BusConfig struct {
	// Buffer is the number of undelivered notifications retained per
	// viewer before the oldest are dropped.
	// Default: 64
	Buffer int `yaml:"buffer"`
}

// ViewerConfig configures viewer connections.
type ViewerConfig struct {
	// KeepaliveInterval is the period between websocket pings. Zero
	// disables pings.
	// Default: 30s
	KeepaliveInterval time.Duration `yaml:"keepalive_interval"`

	// WriteTimeout bounds each frame write to a viewer.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Encoding is the default frame format: "json" or "cbor". A
	// viewer may choose its own with ?encoding= on the socket URL.
	// Default: json
	Encoding string `yaml:"encoding"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: json
	Format string `yaml:"format"`
}

// Default returns the default configuration, used as the base before
// loading a file and on its own when no file is configured.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			Address:         "0.0.0.0:21830",
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Bus: BusConfig{
			Buffer: 64,
		},
		Viewer: ViewerConfig{
			KeepaliveInterval: 30 * time.Second,
			WriteTimeout:      10 * time.Second,
			Encoding:          "json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from the file named by CONVOSNIFFER_CONFIG,
// or returns Default when the variable is unset.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		cfg := Default()
		cfg.applyEnvironmentOverrides()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile merges a single configuration file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is a subset of YAML; jsonc strips comments and
		// trailing commas first.
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &Overrides{
				Log: &LogConfig{Level: "info", Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Server != nil {
		if overrides.Server.Address != "" {
			c.Server.Address = overrides.Server.Address
		}
		if overrides.Server.ShutdownTimeout != 0 {
			c.Server.ShutdownTimeout = overrides.Server.ShutdownTimeout
		}
		if overrides.Server.MaxBodyBytes != 0 {
			c.Server.MaxBodyBytes = overrides.Server.MaxBodyBytes
		}
	}

	if overrides.Bus != nil && overrides.Bus.Buffer != 0 {
		c.Bus.Buffer = overrides.Bus.Buffer
	}

	if overrides.Viewer != nil {
		if overrides.Viewer.KeepaliveInterval != 0 {
			c.Viewer.KeepaliveInterval = overrides.Viewer.KeepaliveInterval
		}
		if overrides.Viewer.WriteTimeout != 0 {
			c.Viewer.WriteTimeout = overrides.Viewer.WriteTimeout
		}
		if overrides.Viewer.Encoding != "" {
			c.Viewer.Encoding = overrides.Viewer.Encoding
		}
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Format != "" {
			c.Log.Format = overrides.Log.Format
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in the address.
func (c *Config) expandVariables() {
	c.Server.Address = expandVars(c.Server.Address)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns from the
// environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"json", "text"}
	viewerFormats = []string{"json", "cbor"}
)

// Validate checks the configuration, reporting every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	} else if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
		errs = append(errs, fmt.Errorf("server.address: %w", err))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}

	if c.Bus.Buffer <= 0 {
		errs = append(errs, errors.New("bus.buffer must be positive"))
	}

	if c.Viewer.KeepaliveInterval < 0 {
		errs = append(errs, errors.New("viewer.keepalive_interval must not be negative"))
	}
	if c.Viewer.WriteTimeout < 0 {
		errs = append(errs, errors.New("viewer.write_timeout must not be negative"))
	}
	if !slices.Contains(viewerFormats, c.Viewer.Encoding) {
		errs = append(errs, fmt.Errorf("viewer.encoding must be one of: %v", viewerFormats))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
