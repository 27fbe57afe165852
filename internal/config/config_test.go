package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "user:pass@tcp(127.0.0.1:3306)/rjpc?parseTime=true")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 168*time.Hour, cfg.CartTTL)
	assert.Equal(t, 30, cfg.CheckoutRatePerMin)
	assert.Equal(t, "orders_changes", cfg.OrdersChannel)
	assert.False(t, cfg.IsProduction())
}

func TestFromViper_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "dsn")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CART_TTL", "24h")
	t.Setenv("CHECKOUT_RATE_PER_MIN", "5")
	t.Setenv("BASE_URL", "https://shop.example.com/")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 24*time.Hour, cfg.CartTTL)
	assert.Equal(t, 5, cfg.CheckoutRatePerMin)
	assert.Equal(t, "https://shop.example.com", cfg.BaseURL)
}

func TestFromViper_RequiredValues(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_SECRET", "s3cret")
	_, err := FromViper(newViper())
	assert.ErrorIs(t, err, ErrMissingDSN)

	t.Setenv("DB_DSN", "dsn")
	t.Setenv("JWT_SECRET", "")
	_, err = FromViper(newViper())
	assert.ErrorIs(t, err, ErrMissingSecret)
}
