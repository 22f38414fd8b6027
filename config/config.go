package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "AGROMART"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	App       AppConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	Supplier  SupplierConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Receipt   ReceiptConfig
}

type AppConfig struct {
	Env          string `envconfig:"AGROMART_ENV" default:"development"`
	Port         string `envconfig:"AGROMART_PORT" default:"8080"`
	LogLevel     string `envconfig:"AGROMART_LOG_LEVEL" default:"info"`
	CookieSecure bool   `envconfig:"AGROMART_COOKIE_SECURE" default:"true"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, EnvDevelopment)
}

// Addr returns the listen address in host:port form.
func (a AppConfig) Addr() string {
	if strings.HasPrefix(a.Port, ":") {
		return a.Port
	}
	return ":" + a.Port
}

type MongoConfig struct {
	URI      string        `envconfig:"AGROMART_MONGO_URI" default:"mongodb://localhost:27017"`
	Database string        `envconfig:"AGROMART_MONGO_DATABASE" default:"agromart"`
	Timeout  time.Duration `envconfig:"AGROMART_MONGO_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	Addr     string `envconfig:"AGROMART_REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"AGROMART_REDIS_PASSWORD"`
	DB       int    `envconfig:"AGROMART_REDIS_DB" default:"0"`
}

type JWTConfig struct {
	Secret string        `envconfig:"AGROMART_JWT_SECRET" required:"true"`
	TTL    time.Duration `envconfig:"AGROMART_JWT_TTL" default:"24h"`
}

// AdminConfig is the single source of truth for the administrator login.
type AdminConfig struct {
	Email        string `envconfig:"AGROMART_ADMIN_EMAIL" required:"true"`
	PasswordHash string `envconfig:"AGROMART_ADMIN_PASSWORD_HASH" required:"true"`
}

type SupplierConfig struct {
	// AllowSentinel re-enables the legacy temp-seller-id path that skips
	// the ownership filter on supplier order updates.
	AllowSentinel bool `envconfig:"AGROMART_SUPPLIER_ALLOW_SENTINEL" default:"false"`
}

type RateLimitConfig struct {
	LoginRate  float64 `envconfig:"AGROMART_LOGIN_RATE" default:"1"`
	LoginBurst int     `envconfig:"AGROMART_LOGIN_BURST" default:"5"`
}

type CORSConfig struct {
	Origins []string `envconfig:"AGROMART_CORS_ORIGINS" default:"*"`
}

type ReceiptConfig struct {
	// Secret signs receipt QR payloads. Empty falls back to the JWT secret.
	Secret string `envconfig:"AGROMART_RECEIPT_SECRET"`
}

// ReceiptSecret returns the key used to sign receipt QR codes.
func (c *Config) ReceiptSecret() string {
	if c.Receipt.Secret != "" {
		return c.Receipt.Secret
	}
	return c.JWT.Secret
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("%s_JWT_SECRET must be at least 16 characters", EnvPrefix)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("%s_JWT_TTL must be positive", EnvPrefix)
	}
	if !strings.HasPrefix(c.Admin.PasswordHash, "$2") {
		return fmt.Errorf("%s_ADMIN_PASSWORD_HASH must be a bcrypt hash", EnvPrefix)
	}
	return nil
}
