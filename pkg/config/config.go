package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr            string
	DatabaseURL           string
	JWTSecret             string
	JWTIssuer             string
	AccessTokenTTLMinutes int
	RefreshTokenTTLHours  int
	SweepIntervalHours    int
	RefreshCookieName     string
	RefreshCookiePath     string
	RefreshCookieSecure   bool
}

func Load() (*Config, error) {
	// .env is optional; deployments set variables in the environment.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:          getString("LISTEN_ADDR", ":8080"),
		JWTIssuer:           getString("JWT_ISSUER", "forumkit"),
		RefreshCookieName:   getString("REFRESH_COOKIE_NAME", "refresh_token"),
		RefreshCookiePath:   getString("REFRESH_COOKIE_PATH", "/api/auth"),
		RefreshCookieSecure: getBool("REFRESH_COOKIE_SECURE", false),
	}

	var err error
	if cfg.DatabaseURL, err = requireString("DATABASE_URL"); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = requireString("JWT_SECRET"); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTLMinutes, err = getInt("ACCESS_TOKEN_MINUTES_TTL", 30); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTLHours, err = getInt("REFRESH_TOKEN_HOURS_TTL", 24*14); err != nil {
		return nil, err
	}
	if cfg.SweepIntervalHours, err = getInt("SWEEP_INTERVAL_HOURS", 24); err != nil {
		return nil, err
	}

	return cfg, nil
}

func requireString(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("missing required environment variable: %s", key)
	}
	return value, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q", key, valueStr)
	}
	return value, nil
}

func getBool(key string, fallback bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}
