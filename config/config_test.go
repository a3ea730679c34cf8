package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type testClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type testConfig struct {
	ServiceConfig `mapstructure:",squash"`
	Client        testClientConfig `mapstructure:"client"`
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "webreq"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info level, got %q", cfg.Logging.Level)
		}
	})

	t.Run("debug raises log level", func(t *testing.T) {
		cfg := ServiceConfig{Name: "webreq", Debug: true}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug level, got %q", cfg.Logging.Level)
		}
	})

	t.Run("explicit level wins over debug", func(t *testing.T) {
		cfg := ServiceConfig{Name: "webreq", Debug: true}
		cfg.Logging.Level = "warn"
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "warn" {
			t.Errorf("expected warn level, got %q", cfg.Logging.Level)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func() ServiceConfig {
		c := ServiceConfig{Name: "webreq"}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*ServiceConfig)
		errMsg string
	}{
		{"valid", func(*ServiceConfig) {}, ""},
		{"missing name", func(c *ServiceConfig) { c.Name = "" }, "config.name is required"},
		{"invalid environment", func(c *ServiceConfig) { c.Environment = "qa" }, "config.environment must be one of"},
		{"invalid log level", func(c *ServiceConfig) { c.Logging.Level = "loud" }, "config.logging"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
name: webreq
environment: staging
logging:
  level: warn
  format: json
client:
  base_url: https://api.example.com
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg testConfig
	if err := Load("webreq", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := testConfig{
		ServiceConfig: ServiceConfig{Name: "webreq", Environment: "staging"},
		Client:        testClientConfig{BaseURL: "https://api.example.com", Timeout: 5 * time.Second},
	}
	want.Logging.Level = "warn"
	want.Logging.Format = "json"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("client:\n  timeout: 5s\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("WEBREQ_CLIENT_TIMEOUT", "9s")
	t.Setenv("WEBREQ_CLIENT_BASE_URL", "http://env.example.com")

	var cfg testConfig
	if err := Load("webreq", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Client.Timeout != 9*time.Second {
		t.Errorf("expected 9s timeout, got %v", cfg.Client.Timeout)
	}
	if cfg.Client.BaseURL != "http://env.example.com" {
		t.Errorf("expected env base url, got %q", cfg.Client.BaseURL)
	}
}

func TestLoadDefaults(t *testing.T) {
	var cfg testConfig
	err := Load("webreq", &cfg,
		WithConfigFile("/nonexistent/config.yml"),
		WithEnvFile("/nonexistent/.env"),
		WithDefault("name", "webreq"),
		WithDefault("client.timeout", "3s"),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "webreq" {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.Client.Timeout != 3*time.Second {
		t.Errorf("expected 3s default timeout, got %v", cfg.Client.Timeout)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte("client: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	var cfg testConfig
	if err := Load("webreq", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func TestResolverSearchOrder(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]bool
		home     string
		wantConf string
		wantEnv  string
	}{
		{
			name:     "cmd directory first",
			files:    map[string]bool{"./cmd/webreq/config.yml": true, "./config.yml": true},
			wantConf: "./cmd/webreq/config.yml",
		},
		{
			name:     "root config",
			files:    map[string]bool{"./config.yml": true, "./.env": true},
			wantConf: "./config.yml",
			wantEnv:  "./.env",
		},
		{
			name:     "home directory",
			files:    map[string]bool{filepath.Join("/home/u", ".config", "webreq", "config.yml"): true},
			home:     "/home/u",
			wantConf: filepath.Join("/home/u", ".config", "webreq", "config.yml"),
		},
		{
			name:  "home ignored when unset",
			files: map[string]bool{filepath.Join("/home/u", ".webreq.yml"): true},
		},
		{
			name:    "service env file",
			files:   map[string]bool{"./.env.webreq": true, "./.env": true},
			wantEnv: "./.env.webreq",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &Resolver{FileSystem: &mockFS{files: tc.files}, HomeDir: tc.home}
			got := r.ResolveFiles("webreq", LoaderConfig{})
			if got.ConfigFile != tc.wantConf {
				t.Errorf("config file: expected %q, got %q", tc.wantConf, got.ConfigFile)
			}
			if got.EnvFile != tc.wantEnv {
				t.Errorf("env file: expected %q, got %q", tc.wantEnv, got.EnvFile)
			}
		})
	}
}

func TestLoadUsesEnvFile(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./.env": true}}
	var cfg testConfig
	if err := Load("webreq", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(fs.loaded) != 1 || fs.loaded[0] != "./.env" {
		t.Errorf("expected ./.env to be loaded, got %v", fs.loaded)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("CLIENT_BASE_URL")
	for _, want := range []string{"client_base_url", "client.base.url", "client.base_url", "client_base.url"} {
		found := false
		for _, v := range got {
			if v == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected variant %q in %v", want, got)
		}
	}
	if diff := cmp.Diff([]string{"name"}, envKeyVariants("NAME")); diff != "" {
		t.Errorf("single part mismatch (-want +got):\n%s", diff)
	}
}
