package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Env:         "development",
		DBDriver:    "sqlite",
		JWTSecret:   "secret",
		MaxUploadMB: 10,
		SessionTTL:  time.Hour,
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cfg.JWTSecret = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.DBDriver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.MaxUploadMB = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_ProductionRejectsDefaultSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.JWTSecret = defaultJWTSecret
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "a-real-secret-from-the-vault"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "salons.db")
	t.Setenv("MAX_UPLOAD_MB", "3")
	t.Setenv("SEND_RATE_WINDOW", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "salons.db", cfg.DatabaseURL)
	assert.Equal(t, int64(3<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 30*time.Second, cfg.SendRateWindow)
	assert.Equal(t, "sessionid", cfg.SessionCookie)
	assert.Same(t, cfg, AppConfig)
}
