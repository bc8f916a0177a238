package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	// APIBaseURL is the backend base URL used for server-side calls.
	// PublicAPIBaseURL is the base URL handed to the browser (templates);
	// in containerized deployments the two differ.
	APIBaseURL       string
	PublicAPIBaseURL string

	// PortalOrigin is the origin of this portal as seen by the browser.
	// The OAuth popup bridge uses it as the explicit postMessage target.
	PortalOrigin string

	SessionSecret string

	LoginRateLimit float64
	LoginRateBurst int
}

func Load() (*Config, error) {
	// Best effort: a missing .env file is fine in production
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		APIBaseURL:       getEnv("API_BASE_URL", ""),
		PublicAPIBaseURL: getEnv("PUBLIC_API_BASE_URL", ""),
		PortalOrigin:     getEnv("PORTAL_ORIGIN", ""),
		SessionSecret:    getEnv("SESSION_SECRET", ""),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}
	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("API_BASE_URL must be a valid URL: %w", err)
	}
	if cfg.PublicAPIBaseURL == "" {
		cfg.PublicAPIBaseURL = cfg.APIBaseURL
	}
	if cfg.PortalOrigin == "" {
		return nil, fmt.Errorf("PORTAL_ORIGIN is required")
	}
	origin, err := url.Parse(cfg.PortalOrigin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("PORTAL_ORIGIN must be an absolute origin like https://portal.example.com")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters, got %d", len(cfg.SessionSecret))
	}

	cfg.LoginRateLimit, err = getEnvFloat("LOGIN_RATE_LIMIT", 1)
	if err != nil {
		return nil, err
	}
	cfg.LoginRateBurst, err = getEnvInt("LOGIN_RATE_BURST", 5)
	if err != nil {
		return nil, err
	}
	if cfg.LoginRateLimit <= 0 || cfg.LoginRateBurst <= 0 {
		return nil, fmt.Errorf("login rate limit and burst must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return i, nil
}
