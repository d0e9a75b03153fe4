package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// Logging
	LogLevel slog.Level

	// Recurring sweep schedule (cron expression, minute-resolution)
	RecurringCron string

	// HTTP rate limit, requests per minute per client
	RateLimitRPM int

	// Net-worth trend cache lifetime
	TrendCacheTTL time.Duration
}

func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/finledger.db"),
		LogLevel:      parseLevel(getEnv("LOG_LEVEL", "info")),
		RecurringCron: getEnv("RECURRING_CRON", "0 6 * * *"),
		RateLimitRPM:  getEnvInt("RATE_LIMIT_RPM", 120),
		TrendCacheTTL: getEnvDuration("TREND_CACHE_TTL", 5*time.Minute),
	}
}

// Validate checks the configuration and returns a combined error when any
// field is invalid.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		problems = append(problems, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	if len(strings.Fields(c.RecurringCron)) != 5 {
		problems = append(problems, fmt.Sprintf("invalid cron expression '%s': expected 5 fields", c.RecurringCron))
	}

	if c.RateLimitRPM < 1 {
		problems = append(problems, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitRPM))
	}

	if c.TrendCacheTTL < time.Second || c.TrendCacheTTL > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid trend cache TTL %v: must be between 1s and 24h", c.TrendCacheTTL))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
