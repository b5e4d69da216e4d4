package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	Environment    string

	// Media storage gateway credentials
	StorageBaseURL   string
	StorageCloudName string
	StorageAPIKey    string
	StorageAPISecret string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		Environment:      getEnv("ENVIRONMENT", "production"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "https://api.cloudinary.com/v1_1"),
		StorageCloudName: getEnv("STORAGE_CLOUD_NAME", ""),
		StorageAPIKey:    getEnv("STORAGE_API_KEY", ""),
		StorageAPISecret: getEnv("STORAGE_API_SECRET", ""),
	}, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
