package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the relay server configuration.
type Config struct {
	Port          int
	BackendURL    string
	UploadLimitMB int64
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnvAsInt("PORT", 8080),
		BackendURL:    getEnv("BACKEND_URL", "http://localhost:8000"),
		UploadLimitMB: getEnvAsInt64("UPLOAD_LIMIT_MB", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
