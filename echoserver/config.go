package echoserver

import (
	"fmt"
	"time"
)

// Config holds echo server configuration.
type Config struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// MaxBodySize bounds request bodies in bytes.
	MaxBodySize int64 `yaml:"max_body_size" mapstructure:"max_body_size"`
	// MaxDelay caps the /delay endpoint.
	MaxDelay time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = 10 << 20
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 10 * time.Second
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("serve.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("serve timeouts must be non-negative")
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("serve.max_body_size must be non-negative (got: %d)", c.MaxBodySize)
	}
	return nil
}
