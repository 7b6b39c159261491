// Package config loads the process configuration. A Config is constructed
// once in main and passed by value into every constructor; no component
// reads ambient global state.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/asila/asila/internal/domain/usecases"
)

// Config is the full process configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	// ContentDB is the path to the SQLite content database.
	ContentDB string `yaml:"content_db"`

	// RulesFile optionally overrides the built-in routing/safety rules and
	// is hot-reloaded while the service runs.
	RulesFile string `yaml:"rules_file"`

	Ollama struct {
		BaseURL       string `yaml:"base_url"`
		EmbedModel    string `yaml:"embed_model"`
		GenerateModel string `yaml:"generate_model"`
	} `yaml:"ollama"`

	Limits struct {
		UserLimit          int `yaml:"user_limit"`
		UserWindowSeconds  int `yaml:"user_window_seconds"`
		AdminLimit         int `yaml:"admin_limit"`
		AdminWindowSeconds int `yaml:"admin_window_seconds"`
	} `yaml:"limits"`

	CacheTTLSeconds      int `yaml:"cache_ttl_seconds"`
	RemoteTimeoutSeconds int `yaml:"remote_timeout_seconds"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.Server.Addr = ":8080"
	c.Redis.Addr = "localhost:6379"
	c.ContentDB = "asila.db"
	c.Ollama.BaseURL = "http://localhost:11434"
	c.Limits.UserLimit = 10
	c.Limits.UserWindowSeconds = 3600
	c.Limits.AdminLimit = 100
	c.Limits.AdminWindowSeconds = 60
	c.CacheTTLSeconds = 86400
	c.RemoteTimeoutSeconds = 15
	return c
}

// Load reads the config file at path over the defaults. An empty path
// returns the defaults. PORT and REDIS_ADDR environment variables win
// over both, matching how the service is deployed.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parsing config: %w", err)
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	return c, nil
}

// PipelineOptions converts the configured limits into pipeline options.
func (c Config) PipelineOptions() usecases.Options {
	return usecases.Options{
		UserLimit:     c.Limits.UserLimit,
		UserWindow:    time.Duration(c.Limits.UserWindowSeconds) * time.Second,
		AdminLimit:    c.Limits.AdminLimit,
		AdminWindow:   time.Duration(c.Limits.AdminWindowSeconds) * time.Second,
		CacheTTL:      time.Duration(c.CacheTTLSeconds) * time.Second,
		RemoteTimeout: time.Duration(c.RemoteTimeoutSeconds) * time.Second,
	}
}
