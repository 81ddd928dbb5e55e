package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("POSTGRES_URI", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "")

	cfg := loadConfig()
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "assets/bible.db", cfg.DBPath)
	assert.Empty(t, cfg.PostgresURI)
	assert.Equal(t, 25, cfg.MaxOpenConns)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("POSTGRES_URI", "postgres://localhost/bible")
	t.Setenv("DB_MAX_OPEN_CONNS", "10")

	cfg := loadConfig()
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "postgres://localhost/bible", cfg.PostgresURI)
	assert.Equal(t, 10, cfg.MaxOpenConns)
}

func TestLoadConfig_BadInt(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	assert.Equal(t, 25, loadConfig().MaxOpenConns)
}
