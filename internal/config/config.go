// Package config reads service settings from the environment, optionally
// primed from a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBDriver    string
	DatabaseURL string
	DBPath      string
	AirportsCSV string
	SeedPath    string

	// When set, positions are served from this snapshot instead of the database.
	SnapshotPath string

	RedisURL        string
	AirportCacheTTL time.Duration

	OptimizeTimeout   time.Duration
	SearchConcurrency int

	LogLevel string
	LogFile  string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := Config{
		Port:         Get("PORT", "8080"),
		DBDriver:     Get("DB_DRIVER", "sqlite"),
		DatabaseURL:  Get("DATABASE_URL", ""),
		DBPath:       Get("DB_PATH", "data/flights.db"),
		AirportsCSV:  Get("AIRPORTS_CSV", "data/airports.csv"),
		SeedPath:     Get("SEED_PATH", "data/seeds/flight_nodes.json"),
		SnapshotPath: Get("SNAPSHOT_PATH", ""),
		RedisURL:     Get("REDIS_URL", ""),
		LogLevel:     Get("LOG_LEVEL", "info"),
		LogFile:      Get("LOG_FILE", ""),
	}

	var err error
	if cfg.AirportCacheTTL, err = GetDuration("AIRPORT_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OptimizeTimeout, err = GetDuration("OPTIMIZE_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SearchConcurrency, err = GetInt("SEARCH_CONCURRENCY", 4); err != nil {
		return Config{}, err
	}

	switch cfg.DBDriver {
	case "pgx", "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" && cfg.SnapshotPath == "" {
			return Config{}, fmt.Errorf("config: DATABASE_URL is required when DB_DRIVER=%s", cfg.DBDriver)
		}
	case "sqlite":
	default:
		return Config{}, fmt.Errorf("config: unsupported DB_DRIVER %q (want pgx or sqlite)", cfg.DBDriver)
	}

	return cfg, nil
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath
	}
	return c.DatabaseURL
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %q is not an integer", key, v)
	}
	return n, nil
}

// GetDuration accepts Go duration syntax ("90s") or a bare number of seconds.
func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %q is not a duration", key, v)
	}
	return d, nil
}
