package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "AUTH_ENABLED", "TARGET_MARKUP", "CORS_ORIGINS", "TOKEN_TTL_HOURS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.False(t, cfg.AuthEnabled)
	assert.Equal(t, 4.0, cfg.TargetMarkup)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("TARGET_MARKUP", "3.5")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.AuthEnabled)
	assert.Equal(t, 3.5, cfg.TargetMarkup)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 40, cfg.RateLimitBurst)
}

func TestInitDBSqlite(t *testing.T) {
	cfg := &Config{DBDriver: "sqlite", DatabaseURL: "file:config_test?mode=memory&cache=shared", DBLogLevel: "silent", DBMaxOpen: 1, DBMaxIdle: 1}
	db, err := InitDB(cfg)
	require.NoError(t, err)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestInitDBUnknownDriver(t *testing.T) {
	_, err := InitDB(&Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
