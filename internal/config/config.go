package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// API Settings
	APITitle   string
	APIVersion string
	APIPrefix  string
	Port       string

	// CORS
	CORSOrigins []string

	// Tagging
	KeywordsPath   string // empty selects the embedded keyword table
	OverridePolicy string // "parity" or "append-only"
	BatchSize      int
	Workers        int
	Books          []string

	// Mapping
	MappingLimit  int
	MappingOutput string

	LogLevel string
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
		APITitle:    getEnv("API_TITLE", "Verse Theme Tagger API"),
		APIVersion:  getEnv("API_VERSION", "1.0.0"),
		APIPrefix:   getEnv("API_PREFIX", "/api/v1"),
		Port:        getEnv("PORT", "8081"),
		CORSOrigins: parseList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),

		KeywordsPath:   getEnv("TAGGER_KEYWORDS_PATH", ""),
		OverridePolicy: getEnv("TAGGER_OVERRIDE_POLICY", "parity"),
		BatchSize:      getEnvInt("TAGGER_BATCH_SIZE", 50),
		Workers:        getEnvInt("TAGGER_WORKERS", 4),
		Books:          parseList(getEnv("TAGGER_BOOKS", "Galatians,Ephesians,Philippians,Colossians")),

		MappingLimit:  getEnvInt("MAPPING_LIMIT", 25),
		MappingOutput: getEnv("MAPPING_OUTPUT", "assets/training_data/theme_verse_mappings.json"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
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
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// parseList accepts a JSON array or a comma separated list
func parseList(value string) []string {
	var items []string
	if err := json.Unmarshal([]byte(value), &items); err == nil {
		return items
	}
	return SplitList(value)
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
