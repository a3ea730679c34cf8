package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is stripped from environment variables before they are bound.
// WEBREQ_CLIENT_BASE_URL binds to client.base_url.
const EnvPrefix = "WEBREQ_"

// FileSystem abstracts file operations for the resolver.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
	// HomeDir is searched after the working directory. Empty skips it.
	HomeDir string
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns explicit paths when set, otherwise the first match
// from the standard search locations.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(r.configPaths(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(r.envPaths(serviceName))
	}
	return resolved
}

func (r *Resolver) configPaths(serviceName string) []string {
	paths := []string{
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		fmt.Sprintf("./%s.yml", serviceName),
		"./config.yml",
	}
	if r.HomeDir != "" {
		paths = append(paths,
			filepath.Join(r.HomeDir, ".config", serviceName, "config.yml"),
			filepath.Join(r.HomeDir, "."+serviceName+".yml"),
		)
	}
	return paths
}

func (r *Resolver) envPaths(serviceName string) []string {
	return []string{
		fmt.Sprintf("./.env.%s", serviceName),
		fmt.Sprintf("./cmd/%s/.env", serviceName),
		"./.env",
	}
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	HomeDir    string
	// Defaults are set on viper before files and env are read.
	Defaults map[string]any
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithHomeDir adds a home directory to the config search path.
func WithHomeDir(dir string) LoaderOption {
	return func(lc *LoaderConfig) { lc.HomeDir = dir }
}

// WithDefault registers a default value for a dotted key.
func WithDefault(key string, value any) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.Defaults == nil {
			lc.Defaults = make(map[string]any)
		}
		lc.Defaults[key] = value
	}
}

// Load reads configuration for serviceName into cfg. Sources are applied in
// order: defaults, config file, .env file, environment. A missing config
// file is not an error; a malformed one is.
func Load(serviceName string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem, HomeDir: lc.HomeDir}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()
	for k, val := range lc.Defaults {
		v.SetDefault(k, val)
	}

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", files.EnvFile, err)
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every WEBREQ_ variable under each nested key it could name.
func bindEnv(v *viper.Viper, environ []string) {
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		for _, variant := range envKeyVariants(strings.TrimPrefix(key, EnvPrefix)) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants expands an env key into the dotted keys it may address.
//
//	CLIENT_BASE_URL -> [client_base_url, client.base.url, client.base_url, client_base.url]
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	variants := []string{lower, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants,
			strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"),
			strings.Join(parts[:i], "_")+"."+strings.Join(parts[i:], "."),
		)
	}
	return dedupe(variants)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
