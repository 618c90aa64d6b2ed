// Package config loads server configuration from an optional YAML file,
// with environment variables taking precedence over both the file and
// the built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings.
type Config struct {
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	StoreBackend   string `yaml:"store_backend"`
	StorePath      string `yaml:"store_path"`
	AllowedOrigins string `yaml:"allowed_origins"`
	LogLevel       string `yaml:"log_level"`
}

// Default returns the built-in defaults: a JSON-backed store at
// ./data.json served on 0.0.0.0:8080.
func Default() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           "8080",
		StoreBackend:   "json",
		StorePath:      "./data.json",
		AllowedOrigins: "*",
		LogLevel:       "info",
	}
}

// Load builds a Config from the defaults, the YAML file at path (skipped
// when path is empty), and finally the HOST, PORT, STORE_BACKEND,
// STORE_PATH, ALLOWED_ORIGINS, and LOG_LEVEL environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	override(&cfg.Host, "HOST")
	override(&cfg.Port, "PORT")
	override(&cfg.StoreBackend, "STORE_BACKEND")
	override(&cfg.StorePath, "STORE_PATH")
	override(&cfg.AllowedOrigins, "ALLOWED_ORIGINS")
	override(&cfg.LogLevel, "LOG_LEVEL")

	return cfg, nil
}

// Addr returns the host:port pair to listen on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
