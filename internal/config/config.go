// Package config loads the pokedex configuration from YAML, the environment
// and an optional .env file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/aggregate"
	"github.com/Sternrassler/pokedex-client/pkg/app"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/history"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/pagination"
)

// EnvPrefix prefixes every environment override, e.g. POKEDEX_REDIS_ADDR.
const EnvPrefix = "POKEDEX"

// Config is the top-level application configuration.
type Config struct {
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`
	PageSize       int           `mapstructure:"page_size" yaml:"page_size"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxConcurrency int           `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	JoinPolicy     string        `mapstructure:"join_policy" yaml:"join_policy"`
	HistoryPolicy  string        `mapstructure:"history_policy" yaml:"history_policy"`
	Redis          RedisConfig   `mapstructure:"redis" yaml:"redis"`
	Log            LogConfig     `mapstructure:"log" yaml:"log"`
	Server         ServerConfig  `mapstructure:"server" yaml:"server"`
}

// RedisConfig enables the response cache when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Password string `mapstructure:"password" yaml:"password"`
}

// LogConfig controls logger output.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
	// File receives logs while the terminal UI is running; empty discards them.
	File string `mapstructure:"file" yaml:"file"`
}

// ServerConfig controls the HTTP facade started by "pokedex serve".
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	clientDefaults := client.DefaultConfig()
	return Config{
		BaseURL:        clientDefaults.BaseURL,
		UserAgent:      clientDefaults.UserAgent,
		PageSize:       pagination.DefaultPageSize,
		Timeout:        clientDefaults.Timeout,
		MaxConcurrency: 0,
		JoinPolicy:     string(aggregate.AllOrNothing),
		HistoryPolicy:  string(history.MoveToFront),
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pokedex", "config.yaml"), nil
}

// Validate checks values that viper cannot type-check.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url must include scheme and host (got %q)", c.BaseURL)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be > 0 (got %d)", c.PageSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0 (got %s)", c.Timeout)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0 (got %d)", c.MaxConcurrency)
	}
	if _, err := aggregate.ParsePolicy(c.JoinPolicy); err != nil {
		return fmt.Errorf("join_policy: %w", err)
	}
	if _, err := history.ParsePolicy(c.HistoryPolicy); err != nil {
		return fmt.Errorf("history_policy: %w", err)
	}
	if err := logging.ValidateLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ClientConfig returns the fetch client settings. Redis is left nil; the
// caller connects it when CacheEnabled reports true.
func (c Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL:   c.BaseURL,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
	}
}

// CacheEnabled reports whether a redis address is configured.
func (c Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

// AppConfig returns the browser controller settings. Call Validate first;
// unknown policies fall back to their defaults here.
func (c Config) AppConfig() app.Config {
	join, err := aggregate.ParsePolicy(c.JoinPolicy)
	if err != nil {
		join = aggregate.AllOrNothing
	}
	hist, err := history.ParsePolicy(c.HistoryPolicy)
	if err != nil {
		hist = history.MoveToFront
	}
	return app.Config{
		PageSize: c.PageSize,
		Aggregate: aggregate.Config{
			MaxConcurrency: c.MaxConcurrency,
			Policy:         join,
		},
		HistoryPolicy: hist,
	}
}

// LoggingConfig returns the logger settings, writing to stderr.
func (c Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}
