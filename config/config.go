/*
config.go - Application configuration

PURPOSE:
  Loads all runtime settings from environment variables, with a .env file
  as an optional local override source. Every setting has a sensible
  default so `go run ./cmd/server` works with no environment at all.

ENVIRONMENT VARIABLES:
  PORT            HTTP server port (default: 8080)
  DB_PATH         SQLite database path (default: approvals.db, ":memory:" supported)
  LOG_LEVEL       logrus level: debug/info/warn/error (default: info)
  ENVIRONMENT     development/production - selects log format (default: development)
  ROSTER_URL      HR directory endpoint returning a JSON roster array
  ROSTER_TOKEN    Bearer token for ROSTER_URL
  ROSTER_FILE     Local roster JSON file; used when ROSTER_URL is unset
  REMINDER_CRON   Cron spec for the pending-report reminder digest
                  (default: "0 9 * * 1-5", weekday mornings; empty disables)
  CORS_ORIGINS    Comma-separated allowed origins (default: "*")

SEE ALSO:
  - cmd/server/main.go: Startup sequence
  - directory/source.go: Roster source selection
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        int
	DBPath      string
	LogLevel    string
	Environment string

	RosterURL   string
	RosterToken string
	RosterFile  string

	ReminderCron string
	CORSOrigins  []string
}

// Load reads configuration from environment variables and a .env file if
// one is present. godotenv never overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         8080,
		DBPath:       "approvals.db",
		LogLevel:     "info",
		Environment:  "development",
		ReminderCron: "0 9 * * 1-5",
		CORSOrigins:  []string{"*"},
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Environment = strings.ToLower(v)
	}

	cfg.RosterURL = os.Getenv("ROSTER_URL")
	cfg.RosterToken = os.Getenv("ROSTER_TOKEN")
	cfg.RosterFile = os.Getenv("ROSTER_FILE")

	if v, ok := os.LookupEnv("REMINDER_CRON"); ok {
		cfg.ReminderCron = v
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSOrigins = origins
	}

	return cfg, nil
}
