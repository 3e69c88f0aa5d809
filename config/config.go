package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds server configuration. The calculation semantics themselves
// are never configurable: rates are versioned data and conventions are
// request parameters.
type Config struct {
	Port           int
	WorkbookPath   string
	LogLevel       string
	AllowedOrigins []string
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvInt("PORT", 8080),
		WorkbookPath:   getEnvString("WORKBOOK_PATH", "claims.db"),
		LogLevel:       getEnvString("LOG_LEVEL", "info"),
		AllowedOrigins: strings.Split(getEnvString("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080"), ","),
	}
	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
