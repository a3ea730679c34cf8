package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/webrequest/logger"
)

// ServiceConfig contains the fields every command needs. Commands embed it
// in their own config structs:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Client httpclient.Config `yaml:"client" mapstructure:"client"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults fills zero values. Debug raises the log level to debug.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	if !slices.Contains(validEnvs, c.Environment) {
		return fmt.Errorf("config.environment must be one of %v (got: %s)", validEnvs, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
