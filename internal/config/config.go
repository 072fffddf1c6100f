package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port        string
	DatabaseDSN string // postgres DSN; empty selects the sqlite file
	SQLitePath  string
	Env         string

	ProviderBaseURL   string
	ProviderAPIKey    string
	ProviderAPISecret string

	ReconcileEvery string // cron spec for the ledger reconcile job
}

// Load loads configuration from environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by main) > default.
func Load() Config {
	cfg := Config{}
	cfg.Port = getEnv("PORT", "8080")
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", "")
	cfg.SQLitePath = getEnv("SQLITE_PATH", "quotebuilder.db")
	cfg.Env = getEnv("APP_ENV", "development")
	cfg.ProviderBaseURL = getEnv("PROVIDER_BASE_URL", "https://api.test.hotelbeds.com")
	cfg.ProviderAPIKey = getEnv("PROVIDER_API_KEY", "")
	cfg.ProviderAPISecret = getEnv("PROVIDER_API_SECRET", "")
	cfg.ReconcileEvery = getEnv("RECONCILE_EVERY", "@every 5m")
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseBool reads an env var as bool with default.
func ParseBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %s", key, v)
			return def
		}
		return b
	}
	return def
}
