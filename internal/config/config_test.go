package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv(envMap(nil))

	require.Equal(t, "development", cfg.AppEnv)
	require.True(t, cfg.IsDev())
	require.Equal(t, "./dev.db", cfg.DBPath)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 50, cfg.HistoryLimit)
	require.Equal(t, "static", cfg.RateProvider)
	require.Equal(t, 5*time.Minute, cfg.MasterDataCacheTTL)
	require.Len(t, cfg.Warnings, 3)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{
		"APP_ENV":              "Production",
		"ADMIN_EMAIL":          "ops@example.com",
		"ADMIN_PASSWORD":       "secret",
		"SESSION_SECRET":       "s3",
		"HISTORY_LIMIT":        "200",
		"RATE_PROVIDER":        "Manual",
		"MASTERDATA_CACHE_TTL": "30s",
		"LOG_FILE":             "/var/log/exportquote.log",
	}))

	require.False(t, cfg.IsDev())
	require.Equal(t, 200, cfg.HistoryLimit)
	require.Equal(t, "manual", cfg.RateProvider)
	require.Equal(t, 30*time.Second, cfg.MasterDataCacheTTL)
	require.Equal(t, "/var/log/exportquote.log", cfg.LogFile)
	require.Empty(t, cfg.Warnings)
}

func TestFromEnv_InvalidNumbersFallBack(t *testing.T) {
	cfg := FromEnv(envMap(map[string]string{
		"ADMIN_EMAIL":          "ops@example.com",
		"ADMIN_PASSWORD":       "secret",
		"SESSION_SECRET":       "s3",
		"HISTORY_LIMIT":        "-4",
		"MASTERDATA_CACHE_TTL": "soon",
	}))

	require.Equal(t, 50, cfg.HistoryLimit)
	require.Equal(t, 5*time.Minute, cfg.MasterDataCacheTTL)
	require.Len(t, cfg.Warnings, 2)
}
