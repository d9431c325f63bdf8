package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	BackendBaseURL     string
	LocalStorePath     string
	DeviceKeyPath      string
	StatusTickPeriod   time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	DebugAlwaysOpen    bool
}

// Load reads configuration from the environment, with a .env file as
// an optional source and sensible defaults for everything local
func Load() *Config {
	// Missing .env is fine; real env vars still apply.
	godotenv.Load()

	return &Config{
		BackendBaseURL:     getEnv("BACKEND_URL", "https://api.tymer.app"),
		LocalStorePath:     getEnv("LOCAL_STORE_PATH", "./tymer.db"),
		DeviceKeyPath:      getEnv("DEVICE_KEY_PATH", "./device.key"),
		StatusTickPeriod:   time.Minute,
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", ""),
		DebugAlwaysOpen:    getBoolEnv("DEBUG_ALWAYS_OPEN", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv reads a boolean environment variable or returns a default
func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
