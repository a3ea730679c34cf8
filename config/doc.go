// Package config loads command configuration with viper.
//
// Files are searched in ./cmd/<name>/config.yml, ./<name>.yml, ./config.yml
// and, when a home directory is given, ~/.config/<name>/config.yml. A .env
// file is loaded with godotenv before environment variables are bound.
//
//	var cfg Config
//	err := config.Load("webreq", &cfg, config.WithHomeDir(home))
//
// Environment variables carry the WEBREQ_ prefix; underscores map to
// nested keys, so WEBREQ_CLIENT_TIMEOUT sets client.timeout.
package config
