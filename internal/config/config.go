package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete receiver configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	HTTP    HTTPConfig    `yaml:"http"`
	Decoder DecoderConfig `yaml:"decoder"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains UDP receiver configuration
type ServerConfig struct {
	UDPPort     int    `yaml:"udp_port"`
	BindAddress string `yaml:"bind_address"`
	BufferSize  int    `yaml:"buffer_size"`
	Workers     int    `yaml:"workers"`
	QueueSize   int    `yaml:"queue_size"`
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// DecoderConfig contains the decoder's address vocabulary and limits.
// Addresses are a table so new firmware message types can be mapped without
// a code change.
type DecoderConfig struct {
	SkeletonAddress string `yaml:"skeleton_address"`
	FrameAddress    string `yaml:"frame_address"`
	MaxBundleDepth  int    `yaml:"max_bundle_depth"`
}

// SessionConfig contains per-source session tracking configuration
type SessionConfig struct {
	Timeout      int `yaml:"timeout"`       // seconds of inactivity before a source is dropped
	FrameHistory int `yaml:"frame_history"` // frames retained per source
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns a configuration with the stock mocopi settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			UDPPort:     12351,
			BindAddress: "0.0.0.0",
			BufferSize:  65536,
			Workers:     4,
			QueueSize:   1024,
		},
		HTTP: HTTPConfig{
			Port:    8080,
			Address: "127.0.0.1",
			Enabled: true,
		},
		Decoder: DecoderConfig{
			SkeletonAddress: "/mocopi/skdf",
			FrameAddress:    "/mocopi/fram",
			MaxBundleDepth:  32,
		},
		Session: SessionConfig{
			Timeout:      30,
			FrameHistory: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Decoder.Validate(); err != nil {
		return fmt.Errorf("decoder config: %w", err)
	}

	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.UDPPort < 1 || s.UDPPort > 65535 {
		return fmt.Errorf("udp_port must be between 1 and 65535, got %d", s.UDPPort)
	}

	if s.BindAddress == "" {
		return fmt.Errorf("bind_address cannot be empty")
	}

	if s.BufferSize < 1024 {
		return fmt.Errorf("buffer_size must be at least 1024 bytes, got %d", s.BufferSize)
	}

	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}

	if s.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1, got %d", s.QueueSize)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates decoder configuration
func (d *DecoderConfig) Validate() error {
	if !strings.HasPrefix(d.SkeletonAddress, "/") {
		return fmt.Errorf("skeleton_address must start with '/', got %q", d.SkeletonAddress)
	}

	if !strings.HasPrefix(d.FrameAddress, "/") {
		return fmt.Errorf("frame_address must start with '/', got %q", d.FrameAddress)
	}

	if d.SkeletonAddress == d.FrameAddress {
		return fmt.Errorf("skeleton_address and frame_address must differ, both are %q", d.FrameAddress)
	}

	if d.MaxBundleDepth < 1 {
		return fmt.Errorf("max_bundle_depth must be at least 1, got %d", d.MaxBundleDepth)
	}

	return nil
}

// Validate validates session configuration
func (s *SessionConfig) Validate() error {
	if s.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", s.Timeout)
	}

	if s.FrameHistory < 1 {
		return fmt.Errorf("frame_history must be at least 1, got %d", s.FrameHistory)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetTimeoutDuration returns the session timeout as a time.Duration
func (s *SessionConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}
