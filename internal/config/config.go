// Package config resolves runtime settings from .env, the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
)

type Config struct {
	HTTPAddr    string
	LogLevel    slog.Level
	CORSOrigins string

	StoreBackend string
	OrderBackend string
	DatabaseURL  string
	MongoURI     string
	MongoDB      string
	StoreTimeout time.Duration

	ShippingFee decimal.Decimal

	JWTSecret         string
	AdminPasswordHash string
	AdminTokenTTL     time.Duration

	AMQPURL        string
	SendGridAPIKey string
	EmailSender    string
	StoreName      string

	SeedDemoData bool
}

func defaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("store_backend", BackendPostgres)
	v.SetDefault("order_backend", "")
	v.SetDefault("database_url", "")
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_database", "storefront")
	v.SetDefault("store_timeout", "10s")
	v.SetDefault("shipping_fee", "50")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("admin_password_hash", "")
	v.SetDefault("admin_token_ttl", "72h")
	v.SetDefault("amqp_url", "")
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("email_sender", "")
	v.SetDefault("store_name", "COD Storefront")
	v.SetDefault("seed_demo_data", false)
}

// Load reads .env when present, then the environment, then the file given
// by --config. Environment values win over the file.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	flags := pflag.NewFlagSet("storefront", pflag.ContinueOnError)
	file := flags.String("config", "", "optional config file (yaml, json, toml)")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	if *file != "" {
		v.SetConfigFile(*file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return Config{}, fmt.Errorf("log_level: %w", err)
	}
	fee, err := decimal.NewFromString(v.GetString("shipping_fee"))
	if err != nil {
		return Config{}, fmt.Errorf("shipping_fee: %w", err)
	}

	cfg := Config{
		HTTPAddr:    v.GetString("http_addr"),
		LogLevel:    level,
		CORSOrigins: v.GetString("cors_origins"),

		StoreBackend: strings.ToLower(v.GetString("store_backend")),
		OrderBackend: strings.ToLower(v.GetString("order_backend")),
		DatabaseURL:  v.GetString("database_url"),
		MongoURI:     v.GetString("mongo_uri"),
		MongoDB:      v.GetString("mongo_database"),
		StoreTimeout: v.GetDuration("store_timeout"),

		ShippingFee: fee,

		JWTSecret:         v.GetString("jwt_secret"),
		AdminPasswordHash: v.GetString("admin_password_hash"),
		AdminTokenTTL:     v.GetDuration("admin_token_ttl"),

		AMQPURL:        v.GetString("amqp_url"),
		SendGridAPIKey: v.GetString("sendgrid_api_key"),
		EmailSender:    v.GetString("email_sender"),
		StoreName:      v.GetString("store_name"),

		SeedDemoData: v.GetBool("seed_demo_data"),
	}
	if cfg.OrderBackend == "" {
		cfg.OrderBackend = cfg.StoreBackend
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND %q is not supported", c.StoreBackend))
	}
	switch c.OrderBackend {
	case c.StoreBackend:
	case BackendMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo order backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("ORDER_BACKEND %q is not supported", c.OrderBackend))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.AdminTokenTTL <= 0 {
		errs = append(errs, errors.New("ADMIN_TOKEN_TTL must be positive"))
	}
	if c.ShippingFee.IsNegative() {
		errs = append(errs, errors.New("SHIPPING_FEE must not be negative"))
	}
	if c.SendGridAPIKey != "" && c.EmailSender == "" {
		errs = append(errs, errors.New("EMAIL_SENDER is required when SENDGRID_API_KEY is set"))
	}
	return errors.Join(errs...)
}
