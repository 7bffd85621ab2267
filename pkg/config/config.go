package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BaseURL         string
	WSBaseURL       string
	Environment     string
	DataDir         string
	HistoryPageSize int
	HTTPTimeout     time.Duration
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		BaseURL:         getEnv("BASE_URL", "https://hanlumi.co.kr"),
		WSBaseURL:       getEnv("WS_URL", "wss://hanlumi.co.kr"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		DataDir:         getEnv("DATA_DIR", "."),
		HistoryPageSize: getEnvAsInt("HISTORY_PAGE_SIZE", 100),
		HTTPTimeout:     time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
