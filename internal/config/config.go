package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus
	MetricsHost string `toml:"metrics_host"`
	MetricsPort string `toml:"metrics_port"`

	// workouts
	Timezone       string `toml:"timezone"`
	DayBoundary    string `toml:"day_boundary"`
	CatalogCacheMB int    `toml:"catalog_cache_mb"`

	// identity & api
	IdentityIssuer       string   `toml:"identity_issuer"`
	SignInURL            string   `toml:"sign_in_url"`
	RequireAPIIdentity   bool     `toml:"require_api_identity"`
	APIRateLimitPerMin   int      `toml:"api_rate_limit_per_min"`
	MCPEnabled           bool     `toml:"mcp_enabled"`
	AllowedOrigins       []string `toml:"allowed_origins"`
	ShutdownTimeoutInSec int      `toml:"shutdown_timeout_sec"`
}

type Toml struct {
	Development *Config `toml:"development"`
	Production  *Config `toml:"production"`
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env, with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}
	return fromToml(&t, env)
}

// Parse is like Load, but reads the TOML content from a string.
func Parse(env, content string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(content, &t); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}
	return fromToml(&t, env)
}

func fromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.Environment = strings.ToLower(env)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.MetricsPort == "" {
		c.MetricsPort = "2112"
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.DayBoundary == "" {
		c.DayBoundary = "exclusive"
	}
	if c.CatalogCacheMB <= 0 {
		c.CatalogCacheMB = 4
	}
	if c.SignInURL == "" {
		c.SignInURL = "/sign-in"
	}
	if c.APIRateLimitPerMin <= 0 {
		c.APIRateLimitPerMin = 120
	}
	if c.ShutdownTimeoutInSec <= 0 {
		c.ShutdownTimeoutInSec = 15
	}
}

func (c *Config) validate() error {
	if c.PostgresDBName == "" {
		return errors.New("postgres_db_name must be set")
	}
	switch c.DayBoundary {
	case "exclusive", "inclusive":
	default:
		return fmt.Errorf("invalid day_boundary [%s], use exclusive or inclusive", c.DayBoundary)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone used for calendar-day scoping.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone [%s]: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}
