// Package config loads application configuration from environment variables
// and an optional config.yaml, with sane defaults for local runs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	HTTP       HTTPConfig
	Redis      RedisConfig
	Payment    PaymentConfig
	JWT        JWTConfig
	Tax        TaxConfig
	Settlement SettlementConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// RedisConfig configures durable cart storage and the settlement guard.
// An empty Addr selects the in-memory stores.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PaymentConfig struct {
	BaseURL   string
	APIKey    string
	ReturnURL string
	Timeout   time.Duration
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type TaxConfig struct {
	// Rate is a decimal string, e.g. "0.08".
	Rate string
}

type SettlementConfig struct {
	GuardTTL time.Duration
}

// TaxRate parses the configured rate.
func (c TaxConfig) TaxRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Rate)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("config: invalid tax rate %q: %w", c.Rate, err)
	}
	if rate.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("config: tax rate %q must not be negative", c.Rate)
	}
	return rate, nil
}

// Load reads configuration. Environment variables use the STOREFRONT_ prefix
// with underscores for nesting (e.g. STOREFRONT_PAYMENT_BASE_URL).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("app.name", "storefront")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.port", "8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 30*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("payment.base_url", "")
	v.SetDefault("payment.api_key", "")
	v.SetDefault("payment.return_url", "http://localhost:8080/payment/return")
	v.SetDefault("payment.timeout", 15*time.Second)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "storefront")
	v.SetDefault("tax.rate", "0.08")
	v.SetDefault("settlement.guard_ttl", 24*time.Hour)

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Payment: PaymentConfig{
			BaseURL:   v.GetString("payment.base_url"),
			APIKey:    v.GetString("payment.api_key"),
			ReturnURL: v.GetString("payment.return_url"),
			Timeout:   v.GetDuration("payment.timeout"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Tax: TaxConfig{
			Rate: v.GetString("tax.rate"),
		},
		Settlement: SettlementConfig{
			GuardTTL: v.GetDuration("settlement.guard_ttl"),
		},
	}

	if _, err := cfg.Tax.TaxRate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
