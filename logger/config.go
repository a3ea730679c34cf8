package logger

import "github.com/kbukum/webrequest/validation"

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	c.Timestamp = true
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	v := validation.New().
		OneOf("logging.level", c.Level, []string{"trace", "debug", "info", "warn", "error", "disabled"}).
		OneOf("logging.format", c.Format, []string{FormatJSON, FormatConsole, FormatPretty}).
		OneOf("logging.output", c.Output, []string{"stdout", "stderr", "discard", "none"})
	return v.Err()
}
