package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the process configuration, sourced from environment
// variables (optionally seeded from a .env file).
type Config struct {
	HTTPAddr  string
	MySQLDSN  string
	RedisAddr string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	ItemCacheTTL time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		MySQLDSN:     os.Getenv("MYSQL_DSN"),
		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		AccessTTL:    15 * time.Minute,
		RefreshTTL:   7 * 24 * time.Hour,
		ItemCacheTTL: 15 * time.Minute,
	}

	if cfg.MySQLDSN == "" {
		return nil, fmt.Errorf("MYSQL_DSN is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	var err error
	if cfg.AccessTTL, err = getduration("ACCESS_TOKEN_TTL", cfg.AccessTTL); err != nil {
		return nil, err
	}
	if cfg.RefreshTTL, err = getduration("REFRESH_TOKEN_TTL", cfg.RefreshTTL); err != nil {
		return nil, err
	}
	if cfg.ItemCacheTTL, err = getduration("ITEM_CACHE_TTL", cfg.ItemCacheTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
