package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port               string
	Env                string
	DBDSN              string
	RedisURL           string
	JWTSecret          string
	AdminPasswordHash  string
	CORSOrigin         string
	BaseURL            string
	UploadDir          string
	CartTTL            time.Duration
	CheckoutRatePerMin int
	OrdersChannel      string
}

var (
	ErrMissingDSN    = errors.New("DB_DSN is required")
	ErrMissingSecret = errors.New("JWT_SECRET is required")
)

// Load reads .env (if present) and the process environment. Environment
// variables win over .env values.
func Load() (*Config, bool, error) {
	envLoaded := godotenv.Load() == nil
	cfg, err := FromViper(newViper())
	return cfg, envLoaded, err
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("CART_TTL", "168h")
	v.SetDefault("CHECKOUT_RATE_PER_MIN", 30)
	v.SetDefault("ORDERS_CHANNEL", "orders_changes")
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetString("PORT"),
		Env:                v.GetString("APP_ENV"),
		DBDSN:              v.GetString("DB_DSN"),
		RedisURL:           v.GetString("REDIS_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		AdminPasswordHash:  v.GetString("ADMIN_PASSWORD_HASH"),
		CORSOrigin:         v.GetString("CORS_ORIGIN"),
		BaseURL:            strings.TrimRight(v.GetString("BASE_URL"), "/"),
		UploadDir:          v.GetString("UPLOAD_DIR"),
		CartTTL:            v.GetDuration("CART_TTL"),
		CheckoutRatePerMin: v.GetInt("CHECKOUT_RATE_PER_MIN"),
		OrdersChannel:      v.GetString("ORDERS_CHANNEL"),
	}

	if cfg.DBDSN == "" {
		return nil, ErrMissingDSN
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.CartTTL <= 0 {
		cfg.CartTTL = 7 * 24 * time.Hour
	}
	if cfg.CheckoutRatePerMin <= 0 {
		cfg.CheckoutRatePerMin = 30
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
