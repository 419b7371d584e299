package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings of the service.
type Config struct {
	AppPort     string
	CORSOrigins string

	Database DatabaseConfig
	Auth     AuthConfig
	RabbitMQ RabbitMQConfig
	Payment  PaymentConfig
	Upload   UploadConfig
	Seed     SeedConfig
}

type DatabaseConfig struct {
	Driver   string // "postgres" or "sqlite"
	DSN      string
	LogLevel string // silent, error, warn, info
}

type AuthConfig struct {
	JWTSecret        string
	TokenTTL         time.Duration
	AllowAdminSignup bool
}

type RabbitMQConfig struct {
	URL      string // empty disables event publishing
	Exchange string
}

type PaymentConfig struct {
	StripeAPIKey string
	StripeAPIURL string // overrides the Stripe API base URL, used for stubs
	Currency     string
}

type UploadConfig struct {
	Dir           string
	PublicBaseURL string // prefix of returned file URLs; request base URL when empty
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	Products      bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=shoplite port=5432 sslmode=disable")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("ALLOW_ADMIN_SIGNUP", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "shoplite.orders")
	v.SetDefault("PAYMENT_CURRENCY", "usd")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("ADMIN_EMAIL", "admin@shoplite.com")
	v.SetDefault("ADMIN_PASSWORD", "") // no admin account unless set
	v.SetDefault("SEED_PRODUCTS", false)
}

// Load reads an optional .env file, then the environment, on top of the defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:     v.GetString("APP_PORT"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:      v.GetString("DATABASE_DSN"),
			LogLevel: strings.ToLower(v.GetString("DB_LOG_LEVEL")),
		},
		Auth: AuthConfig{
			JWTSecret:        v.GetString("JWT_SECRET"),
			TokenTTL:         v.GetDuration("JWT_TTL"),
			AllowAdminSignup: v.GetBool("ALLOW_ADMIN_SIGNUP"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Payment: PaymentConfig{
			StripeAPIKey: v.GetString("STRIPE_API_KEY"),
			StripeAPIURL: v.GetString("STRIPE_API_URL"),
			Currency:     strings.ToLower(v.GetString("PAYMENT_CURRENCY")),
		},
		Upload: UploadConfig{
			Dir:           v.GetString("UPLOAD_DIR"),
			PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		},
		Seed: SeedConfig{
			AdminEmail:    v.GetString("ADMIN_EMAIL"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
			Products:      v.GetBool("SEED_PRODUCTS"),
		},
	}

	if !strings.HasPrefix(cfg.AppPort, ":") && !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.Payment.Currency == "" {
		return fmt.Errorf("PAYMENT_CURRENCY is required")
	}
	return nil
}
