package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// calendar
	Timezone  string `toml:"timezone"`
	WeekStart string `toml:"week_start"`

	// storage
	StorageBackend     string `toml:"storage_backend"`
	StorageNamespace   string `toml:"storage_namespace"`
	SQLitePath         string `toml:"sqlite_path"`
	MemoryCapacity     int    `toml:"memory_capacity"`
	CacheSize          int    `toml:"cache_size"`
	CacheExpireSeconds int    `toml:"cache_expire_seconds"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`

	// browser origins allowed to call the API; "*" allows any
	CorsAllowedOrigins []string `toml:"cors_allowed_origins"`

	// rate limiting of mutating requests, per client per minute
	RateLimitAllowedPerMin int `toml:"rate_limit_allowed_per_min"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

type Toml struct {
	Development *Config
	Production  *Config
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

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return FromToml(env, t)
}

// Parse is Load for an in-memory TOML document.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return FromToml(env, t)
}

func FromToml(env string, t Toml) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.WeekStart == "" {
		c.WeekStart = "sunday"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = "sqlite"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "fitlog.db"
	}
	if c.RateLimitAllowedPerMin == 0 {
		c.RateLimitAllowedPerMin = 60
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
}

func (c *Config) validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.FirstWeekday(); err != nil {
		return err
	}
	switch c.StorageBackend {
	case "memory", "sqlite":
	case "redis":
		if c.RedisHost == "" || c.RedisPort == "" {
			return errors.New("redis backend needs redis_host and redis_port")
		}
	case "postgres":
		if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "" {
			return errors.New("postgres backend needs postgres_host, postgres_port and postgres_db_name")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}
	return nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) FirstWeekday() (time.Weekday, error) {
	switch strings.ToLower(c.WeekStart) {
	case "sunday", "sun":
		return time.Sunday, nil
	case "monday", "mon":
		return time.Monday, nil
	case "saturday", "sat":
		return time.Saturday, nil
	}
	return time.Sunday, fmt.Errorf("unsupported week start: %s", c.WeekStart)
}
