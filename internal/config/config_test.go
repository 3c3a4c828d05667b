package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("TOKEN_SECRET", "a-long-enough-secret-value")
	t.Setenv("DOMAIN", "https://api.example.com/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 6*time.Hour, cfg.VerifyTTL)
	assert.Equal(t, time.Hour, cfg.ResetTTL)
	assert.Equal(t, "https://api.example.com", cfg.Domain)
	assert.Equal(t, DefaultOrigins, cfg.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.MailConfigured())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("TOKEN_SECRET", "short")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigOrigins(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("TOKEN_SECRET", "a-long-enough-secret-value")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsProduction())
}
