package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppEnv       = "development"
	defaultDBPath       = "./dev.db"
	defaultPort         = "8080"
	defaultLogLevel     = "info"
	defaultHistoryLimit = 50
	defaultRateProvider = "static"
	defaultCacheTTL     = 5 * time.Minute
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv        string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string

	LogLevel string
	LogFile  string

	// HistoryLimit caps the stored quote history; the oldest entries are evicted first.
	HistoryLimit       int
	RateProvider       string
	MasterDataCacheTTL time.Duration

	// DotEnvKeys is how many variables the dotenv file set.
	DotEnvKeys int
	// Warnings collects problems found while loading, for logging once a logger exists.
	Warnings []string
}

// Load reads ./.env, then environment variables, and returns a populated Config.
func Load() Config {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(path string) Config {
	n, err := loadDotEnv(path)
	cfg := FromEnv(os.Getenv)
	cfg.DotEnvKeys = n
	if err != nil {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("read %s: %v", path, err))
	}
	return cfg
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) Config {
	cfg := Config{
		AppEnv:        strings.ToLower(strings.TrimSpace(getenv("APP_ENV"))),
		AdminEmail:    getenv("ADMIN_EMAIL"),
		AdminPassword: getenv("ADMIN_PASSWORD"),
		SessionSecret: getenv("SESSION_SECRET"),
		DBPath:        getenv("DB_PATH"),
		Port:          getenv("PORT"),
		LogLevel:      getenv("LOG_LEVEL"),
		LogFile:       getenv("LOG_FILE"),
		RateProvider:  strings.ToLower(strings.TrimSpace(getenv("RATE_PROVIDER"))),
	}

	if cfg.AppEnv == "" {
		cfg.AppEnv = defaultAppEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.RateProvider == "" {
		cfg.RateProvider = defaultRateProvider
	}

	cfg.HistoryLimit = defaultHistoryLimit
	if raw := strings.TrimSpace(getenv("HISTORY_LIMIT")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			cfg.warn("HISTORY_LIMIT %q is not a positive integer, using %d", raw, defaultHistoryLimit)
		} else {
			cfg.HistoryLimit = n
		}
	}

	cfg.MasterDataCacheTTL = defaultCacheTTL
	if raw := strings.TrimSpace(getenv("MASTERDATA_CACHE_TTL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			cfg.warn("MASTERDATA_CACHE_TTL %q is not a duration, using %s", raw, defaultCacheTTL)
		} else {
			cfg.MasterDataCacheTTL = d
		}
	}

	if cfg.AdminEmail == "" {
		cfg.warn("ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		cfg.warn("ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		cfg.warn("SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}
