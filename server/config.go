package server

import (
	"fmt"
	"time"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	MaxBodySize  string `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "10MB"

	// RunTimeout bounds a single plan run, e.g. "30s". Empty means none.
	RunTimeout string `yaml:"run_timeout" mapstructure:"run_timeout"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}
	if c.RunTimeout != "" {
		if _, err := time.ParseDuration(c.RunTimeout); err != nil {
			return fmt.Errorf("server.run_timeout %q: %w", c.RunTimeout, err)
		}
	}
	return nil
}

func (c *Config) runTimeout() time.Duration {
	d, _ := time.ParseDuration(c.RunTimeout)
	return d
}
