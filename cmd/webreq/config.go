package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/webrequest/config"
	"github.com/kbukum/webrequest/echoserver"
	"github.com/kbukum/webrequest/httpclient"
	"github.com/kbukum/webrequest/logger"
	"github.com/kbukum/webrequest/observability"
	buildinfo "github.com/kbukum/webrequest/version"
)

// Config is the webreq configuration, read from config.yml, .env files and
// WEBREQ_* variables.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Client  httpclient.Config `yaml:"client" mapstructure:"client"`
	Serve   echoserver.Config `yaml:"serve" mapstructure:"serve"`
	Tracing TracingConfig     `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
}

// TracingConfig enables OTLP trace export.
type TracingConfig struct {
	Enabled                    bool `yaml:"enabled" mapstructure:"enabled"`
	observability.TracerConfig `yaml:",inline" mapstructure:",squash"`
}

// MetricsConfig enables OTLP metric export.
type MetricsConfig struct {
	Enabled                   bool `yaml:"enabled" mapstructure:"enabled"`
	observability.MeterConfig `yaml:",inline" mapstructure:",squash"`
}

// ApplyDefaults fills zero values of every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Client.ApplyDefaults()
	c.Serve.ApplyDefaults()

	td := observability.DefaultTracerConfig(c.Name)
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = td.ServiceName
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = buildinfo.Version
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint, c.Tracing.Insecure = td.Endpoint, td.Insecure
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = td.SampleRate
	}

	md := observability.DefaultMeterConfig(c.Name)
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = md.ServiceName
	}
	if c.Metrics.ServiceVersion == "" {
		c.Metrics.ServiceVersion = buildinfo.Version
	}
	if c.Metrics.Environment == "" {
		c.Metrics.Environment = c.Environment
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint, c.Metrics.Insecure = md.Endpoint, md.Insecure
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = md.Interval
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Client.Validate(); err != nil {
		return err
	}
	if err := c.Serve.Validate(); err != nil {
		return err
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1 (got: %v)", c.Tracing.SampleRate)
	}
	return nil
}

func loadConfig() (Config, error) {
	var cfg Config
	opts := []config.LoaderOption{config.WithDefault("name", "webreq")}
	if configPath != "" {
		opts = append(opts, config.WithConfigFile(configPath))
	}
	if err := config.Load("webreq", &cfg, opts...); err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// app holds what a command needs once configuration is loaded.
type app struct {
	cfg      Config
	log      *logger.Logger
	shutdown []func(context.Context) error
}

// setup loads the configuration, installs the global logger and starts the
// enabled telemetry exporters.
func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	a := &app{cfg: cfg, log: log}
	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing.TracerConfig)
		if err != nil {
			return nil, err
		}
		a.shutdown = append(a.shutdown, tp.Shutdown)
	}
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, cfg.Metrics.MeterConfig)
		if err != nil {
			_ = a.close(ctx)
			return nil, err
		}
		a.shutdown = append(a.shutdown, mp.Shutdown)
	}
	return a, nil
}

// client builds an httpclient.Client from the loaded configuration.
func (a *app) client() (*httpclient.Client, error) {
	opts := []httpclient.Option{httpclient.WithLogger(logger.Get("httpclient"))}
	if a.cfg.Metrics.Enabled {
		m, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpclient.WithMetrics(m))
	}
	return httpclient.NewClient(a.cfg.Client, opts...)
}

// close flushes and stops the telemetry exporters.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		errs = append(errs, a.shutdown[i](ctx))
	}
	a.shutdown = nil
	return errors.Join(errs...)
}
