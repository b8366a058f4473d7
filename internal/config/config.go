package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ajitpratap0/modaudit/internal/audit"
	"github.com/ajitpratap0/modaudit/internal/classifier"
	"github.com/ajitpratap0/modaudit/internal/fetcher"
)

// Config holds all configuration for modaudit.
type Config struct {
	Dataset DatasetConfig `mapstructure:"dataset"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Session SessionConfig `mapstructure:"session"`
	API     APIConfig     `mapstructure:"api"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DatasetConfig holds reference dataset endpoint settings.
type DatasetConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// AuditConfig holds classification loop settings.
type AuditConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	AutoCheck     bool          `mapstructure:"auto_check"`
	ReservedKeys  []string      `mapstructure:"reserved_keys"`
}

// SessionConfig points at the roster file used by the CLI session provider.
type SessionConfig struct {
	RosterFile string `mapstructure:"roster_file"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// String returns a safe representation of APIConfig with the token masked.
func (c APIConfig) String() string {
	return fmt.Sprintf("APIConfig{ListenAddr:%s, AuthToken:%s}", c.ListenAddr, maskToken(c.AuthToken))
}

// maskToken shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskToken(token string) string {
	const visible = 4
	if token == "" {
		return ""
	}
	if len(token) <= visible*2 {
		return "***"
	}
	return token[:visible] + "****" + token[len(token)-visible:]
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".modaudit"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("MODAUDIT")
	v.AutomaticEnv()

	_ = v.BindEnv("dataset.url", "MODAUDIT_DATASET_URL")
	_ = v.BindEnv("audit.check_interval", "MODAUDIT_AUDIT_CHECK_INTERVAL")
	_ = v.BindEnv("session.roster_file", "MODAUDIT_SESSION_ROSTER_FILE")
	_ = v.BindEnv("api.listen_addr", "MODAUDIT_API_LISTEN_ADDR")
	_ = v.BindEnv("api.auth_token", "MODAUDIT_API_AUTH_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	return decode(v)
}

// LoadFile reads configuration from an explicit file, still honouring env overrides.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("MODAUDIT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.url", fetcher.DefaultURL)
	v.SetDefault("dataset.timeout", fetcher.DefaultTimeout)
	v.SetDefault("dataset.max_body_bytes", fetcher.DefaultMaxBodyBytes)

	v.SetDefault("audit.check_interval", audit.DefaultCheckInterval)
	v.SetDefault("audit.auto_check", true)
	v.SetDefault("audit.reserved_keys", []string{classifier.ReservedOnboardingKey})

	v.SetDefault("session.roster_file", "")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.auth_token", "")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Dataset.URL == "" {
		return fmt.Errorf("dataset.url must not be empty")
	}
	u, err := url.Parse(c.Dataset.URL)
	if err != nil {
		return fmt.Errorf("dataset.url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("dataset.url %q must be absolute", c.Dataset.URL)
	}
	if c.Dataset.Timeout <= 0 {
		return fmt.Errorf("dataset.timeout must be greater than 0")
	}
	if c.Dataset.MaxBodyBytes <= 0 {
		return fmt.Errorf("dataset.max_body_bytes must be greater than 0")
	}
	if c.Audit.CheckInterval <= 0 {
		return fmt.Errorf("audit.check_interval must be greater than 0")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
