// Package config loads the service configuration: a YAML file, an optional
// .env file and STUDYPLAN_* environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/studyplan/internal/constants"
	"github.com/julianstephens/studyplan/internal/errors"
	"github.com/julianstephens/studyplan/internal/logger"
	"github.com/julianstephens/studyplan/internal/models"
	"github.com/julianstephens/studyplan/internal/utils"
)

// Config represents the overall application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig holds the HTTP API configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database location. DSN is either a SQLite file path
// or a PostgreSQL connection string without an embedded password.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type LogConfig struct {
	Debug bool   `yaml:"debug"`
	Dir   string `yaml:"dir"`
}

// SchedulerConfig seeds persisted settings on init. Unset fields keep the defaults.
type SchedulerConfig struct {
	Timezone              string   `yaml:"timezone"`
	DayStartHour          *int     `yaml:"day_start_hour"`
	DayEndHour            *int     `yaml:"day_end_hour"`
	PreferredStartHour    *int     `yaml:"preferred_start_hour"`
	GapWeight             *float64 `yaml:"gap_weight"`
	PriorityWeight        *float64 `yaml:"priority_weight"`
	DefaultSessionMinutes *int     `yaml:"default_session_minutes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            constants.DefaultPort,
			RateLimitPerSec: constants.DefaultRateLimitPerSec,
			RateLimitBurst:  constants.DefaultRateLimitBurst,
			CacheTTLSeconds: constants.DefaultCacheTTLSeconds,
		},
		Database: DatabaseConfig{
			DSN: constants.DefaultConfigPath,
		},
	}
}

// Load reads the configuration from path (optional), then applies .env and
// environment overrides. A missing path is an error; an empty path is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(ExpandPath(path))
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", errors.ErrInvalidConfig, path, err)
		}
	}

	LoadEnvFile("")
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path (".env" when empty) without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to load env file", "path", path, "error", err)
		}
		return
	}
	logger.Debug("Loaded env file", "path", path)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(constants.EnvDBConnection); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(constants.EnvLogDir); v != "" {
		c.Log.Dir = v
	}
	if v := os.Getenv(constants.EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", errors.ErrInvalidConfig, constants.EnvDebug, v)
		}
		c.Log.Debug = debug
	}
	if v := os.Getenv(constants.EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a port", errors.ErrInvalidConfig, constants.EnvPort, v)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) normalize() {
	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultPort
	}
	if c.Server.RateLimitPerSec <= 0 {
		c.Server.RateLimitPerSec = constants.DefaultRateLimitPerSec
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = max(1, int(c.Server.RateLimitPerSec))
	}
	if c.Server.CacheTTLSeconds < 0 {
		c.Server.CacheTTLSeconds = 0
	}
	if c.Database.DSN == "" {
		c.Database.DSN = constants.DefaultConfigPath
	}
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", errors.ErrInvalidConfig, c.Server.Port)
	}
	if tz := c.Scheduler.Timezone; tz != "" && !utils.ValidateTimezone(tz) {
		return fmt.Errorf("%w: scheduler.timezone %q is not a known IANA zone", errors.ErrInvalidConfig, tz)
	}
	return nil
}

// Seed overlays the configured scheduler values onto s.
func (sc SchedulerConfig) Seed(s models.Settings) models.Settings {
	if sc.Timezone != "" {
		s.Timezone = sc.Timezone
	}
	if sc.DayStartHour != nil {
		s.DayStartHour = *sc.DayStartHour
	}
	if sc.DayEndHour != nil {
		s.DayEndHour = *sc.DayEndHour
	}
	if sc.PreferredStartHour != nil {
		s.PreferredStartHour = *sc.PreferredStartHour
	}
	if sc.GapWeight != nil {
		s.GapWeight = *sc.GapWeight
	}
	if sc.PriorityWeight != nil {
		s.PriorityWeight = *sc.PriorityWeight
	}
	if sc.DefaultSessionMinutes != nil {
		s.DefaultSessionMinutes = *sc.DefaultSessionMinutes
	}
	return s
}

// ExpandPath replaces a leading "~/" with the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// IsPostgresDSN reports whether dsn addresses PostgreSQL rather than a SQLite file.
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") ||
		strings.Contains(dsn, "dbname=")
}

// ConfigDir returns the directory that holds the database and logs for a
// SQLite DSN, or the default config directory for PostgreSQL.
func ConfigDir(dsn string) string {
	if dsn == "" || IsPostgresDSN(dsn) {
		return filepath.Dir(ExpandPath(constants.DefaultConfigPath))
	}
	return filepath.Dir(ExpandPath(dsn))
}
