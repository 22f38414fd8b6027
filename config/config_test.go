package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z2fBJ2Fq3h0x8Rj4xZzQe5lW"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("AGROMART_JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("AGROMART_ADMIN_EMAIL", "admin@agromart.test")
	t.Setenv("AGROMART_ADMIN_PASSWORD_HASH", testHash)
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, ":8080", cfg.App.Addr())
	assert.True(t, cfg.App.IsDev())
	assert.Equal(t, "agromart", cfg.Mongo.Database)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.False(t, cfg.Supplier.AllowSentinel)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Equal(t, 5, cfg.RateLimit.LoginBurst)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("AGROMART_PORT", ":9000")
	t.Setenv("AGROMART_SUPPLIER_ALLOW_SENTINEL", "true")
	t.Setenv("AGROMART_CORS_ORIGINS", "https://a.test,https://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.App.Addr())
	assert.True(t, cfg.Supplier.AllowSentinel)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORS.Origins)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("AGROMART_JWT_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsPlainPassword(t *testing.T) {
	setRequired(t)
	t.Setenv("AGROMART_ADMIN_PASSWORD_HASH", "admin123")

	_, err := Load()
	require.Error(t, err)
}

func TestReceiptSecretFallsBackToJWT(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef0123", cfg.ReceiptSecret())

	t.Setenv("AGROMART_RECEIPT_SECRET", "qr-signing-key")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "qr-signing-key", cfg.ReceiptSecret())
}
