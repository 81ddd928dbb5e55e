package config

import (
	"os"
	"strconv"
	"sync"
)

// Config holds configuration for the verse database
type Config struct {
	// Driver selects the backend: "sqlite" or "postgres"
	Driver string

	// SQLite
	DBPath string

	// PostgreSQL
	PostgresURI string

	// Pool settings (postgres only; sqlite is pinned to one connection)
	MaxOpenConns int
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the singleton configuration instance
func GetConfig() *Config {
	once.Do(func() {
		config = loadConfig()
	})
	return config
}

func loadConfig() *Config {
	return &Config{
		Driver: getEnv("DB_DRIVER", "sqlite"),

		// SQLite
		DBPath: getEnv("DB_PATH", "assets/bible.db"),

		// PostgreSQL
		PostgresURI:  getEnv("POSTGRES_URI", ""),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
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
		i, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return i
	}
	return defaultValue
}
