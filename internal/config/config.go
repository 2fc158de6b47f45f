// Package config provides dynamic configuration management for EffectLab.
// It uses Viper to load settings from files, environment variables, and CLI flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for EffectLab.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────────────
	ServerHost string `mapstructure:"server_host"`
	Port       int    `mapstructure:"port"`

	// ── Console journal ──────────────────────────────────────────────────────
	DBDriver string `mapstructure:"db_driver"` // only "sqlite"
	// DBPath is an in-memory DSN by default; console output is not meant to
	// outlive the process.
	DBPath         string `mapstructure:"db_path"`
	ConsoleHistory int    `mapstructure:"console_history"`
	// ConsoleRetention caps stored entries per session and route.
	ConsoleRetention int `mapstructure:"console_retention"`

	// ── Demo data source ─────────────────────────────────────────────────────
	QuoteURL            string `mapstructure:"quote_url"`
	QuoteTimeoutSeconds int    `mapstructure:"quote_timeout_seconds"`

	// ── Demo timing ──────────────────────────────────────────────────────────
	TickIntervalMS int `mapstructure:"tick_interval_ms"`
	TimeoutDelayMS int `mapstructure:"timeout_delay_ms"`
	MaxLiveTimers  int `mapstructure:"max_live_timers"`
	MaxWindows     int `mapstructure:"max_windows"`

	// ── Sessions ─────────────────────────────────────────────────────────────
	// SessionSecret seeds the cookie signing key. Empty means a random key
	// per process, which logs every visitor out on restart.
	SessionSecret        string `mapstructure:"session_secret"`
	SessionTTLMinutes    int    `mapstructure:"session_ttl_minutes"`
	SweepIntervalSeconds int    `mapstructure:"sweep_interval_seconds"`

	// ── Content ──────────────────────────────────────────────────────────────
	PromoURL string `mapstructure:"promo_url"`

	// ── Logging ──────────────────────────────────────────────────────────────
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // json | console
}

// Load reads config from file (./config.yaml or ~/.effectlab/config.yaml)
// and falls back to smart defaults. Environment variables with prefix
// EFFECTLAB_ override file values.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	// --- Smart Defaults ---
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("port", 3000)

	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_path", "file:effectlab?mode=memory&cache=shared")
	v.SetDefault("console_history", 20)
	v.SetDefault("console_retention", 200)

	v.SetDefault("quote_url", "https://api.github.com/zen")
	v.SetDefault("quote_timeout_seconds", 5)

	v.SetDefault("tick_interval_ms", 1000)
	v.SetDefault("timeout_delay_ms", 1000)
	v.SetDefault("max_live_timers", 64)
	v.SetDefault("max_windows", 1000)

	v.SetDefault("session_secret", "")
	v.SetDefault("session_ttl_minutes", 30)
	v.SetDefault("sweep_interval_seconds", 60)

	v.SetDefault("promo_url", "https://mockexperts.com")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// --- Config file ---
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.effectlab")
	if err := v.ReadInConfig(); err != nil {
		// config file is optional; ignore "not found" errors
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// --- Environment Variables ---
	v.SetEnvPrefix("EFFECTLAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("config: port %d out of range", c.Port)
	case c.DBDriver != "sqlite" && c.DBDriver != "":
		return fmt.Errorf("config: unsupported db_driver %q (use 'sqlite')", c.DBDriver)
	case c.TickIntervalMS <= 0 || c.TimeoutDelayMS <= 0:
		return errors.New("config: tick_interval_ms and timeout_delay_ms must be positive")
	case c.SessionTTLMinutes <= 0 || c.SweepIntervalSeconds <= 0:
		return errors.New("config: session_ttl_minutes and sweep_interval_seconds must be positive")
	case c.ConsoleHistory < 0:
		return errors.New("config: console_history must not be negative")
	case c.ConsoleRetention < c.ConsoleHistory:
		return errors.New("config: console_retention must be at least console_history")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string { return fmt.Sprintf("%s:%d", c.ServerHost, c.Port) }

func (c *Config) QuoteTimeout() time.Duration {
	return time.Duration(c.QuoteTimeoutSeconds) * time.Second
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

func (c *Config) TimeoutDelay() time.Duration {
	return time.Duration(c.TimeoutDelayMS) * time.Millisecond
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
