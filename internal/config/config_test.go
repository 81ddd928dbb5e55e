package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"API_PREFIX", "PORT", "CORS_ORIGINS", "TAGGER_KEYWORDS_PATH", "TAGGER_OVERRIDE_POLICY",
		"TAGGER_BATCH_SIZE", "TAGGER_WORKERS", "TAGGER_BOOKS", "MAPPING_LIMIT", "MAPPING_OUTPUT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := loadConfig()
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.KeywordsPath)
	assert.Equal(t, "parity", cfg.OverridePolicy)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"Galatians", "Ephesians", "Philippians", "Colossians"}, cfg.Books)
	assert.Equal(t, 25, cfg.MappingLimit)
	assert.Equal(t, "assets/training_data/theme_verse_mappings.json", cfg.MappingOutput)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("TAGGER_BATCH_SIZE", "10")
	t.Setenv("TAGGER_WORKERS", "not-a-number")
	t.Setenv("TAGGER_BOOKS", `["Psalms","1 John"]`)
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("TAGGER_OVERRIDE_POLICY", "append-only")

	cfg := loadConfig()
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 4, cfg.Workers, "invalid values fall back to the default")
	assert.Equal(t, []string{"Psalms", "1 John"}, cfg.Books)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "append-only", cfg.OverridePolicy)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Galatians", "1 John"}, SplitList("Galatians, 1 John,"))
	assert.Empty(t, SplitList(""))
}
