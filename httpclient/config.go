package httpclient

import (
	"fmt"
	"maps"
	"time"

	"github.com/kbukum/webrequest/validation"
)

// Config configures a Client. It is loadable from YAML or the environment
// and becomes the client's defaults baseline.
type Config struct {
	// BaseURL is prepended to relative request URLs.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	// Timeout bounds each exchange. Zero means no limit.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"min=0"`
	// Headers are sent with every request.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// UserAgent replaces the default webrequest/<version> agent.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// Proxy is an http, https or socks5 proxy URL.
	Proxy string `yaml:"proxy" mapstructure:"proxy" validate:"omitempty,url"`
	// Gzip requests compressed responses.
	Gzip bool `yaml:"gzip" mapstructure:"gzip"`
	// StrictSSL false disables certificate verification.
	StrictSSL *bool `yaml:"strict_ssl" mapstructure:"strict_ssl"`
	// MaxRedirects bounds redirect chains. Defaults to 10.
	MaxRedirects int `yaml:"max_redirects" mapstructure:"max_redirects" validate:"min=0"`
	// ThrowResponseError turns statuses of 400 and above into errors.
	ThrowResponseError bool `yaml:"throw_response_error" mapstructure:"throw_response_error"`
	// UseJar shares one cookie jar across the client's requests.
	UseJar bool `yaml:"use_jar" mapstructure:"use_jar"`
	// TLS configures trust roots and client certificates.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls" validate:"-"`
	// Auth is applied to every request that sets no auth of its own.
	Auth *AuthConfig `yaml:"-" mapstructure:"-" validate:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.MaxRedirects == 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("", validation.Struct(c))
	if c.Proxy != "" {
		if err := checkProxyScheme(c.Proxy); err != nil {
			v.AddError("proxy", err.Error())
		}
	}
	if err := c.TLS.Validate(); err != nil {
		v.AddError("tls", err.Error())
	}
	if err := v.Err(); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}

// Options returns the request-level baseline described by c. Transport
// settings (TLS, Proxy, StrictSSL) are applied to the client transport
// instead.
func (c *Config) Options() *Options {
	o := &Options{
		BaseURL:      c.BaseURL,
		Timeout:      c.Timeout,
		Headers:      maps.Clone(c.Headers),
		Gzip:         c.Gzip,
		MaxRedirects: c.MaxRedirects,
		Auth:         c.Auth,
		UseJar:       c.UseJar,
	}
	if c.UserAgent != "" {
		if o.Headers == nil {
			o.Headers = make(map[string]string, 1)
		}
		setHeader(o.Headers, "User-Agent", c.UserAgent, false)
	}
	if c.UseJar {
		o.Jar = NewJar()
	}
	return o
}
