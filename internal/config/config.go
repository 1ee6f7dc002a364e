package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime configuration loaded from environment variables.
type Config struct {
	DBURL      string `env:"DB_URL,required,notEmpty"`
	ServerPort int    `env:"PORT" envDefault:"8080"`

	// Stripe configuration. Price ids are static deploy-time configuration,
	// never computed.
	StripeSecretKey    string `env:"STRIPE_SECRET_KEY,required,notEmpty"`
	StripeWebhookKey   string `env:"STRIPE_WEBHOOK_SECRET,required,notEmpty"`
	PriceOneTime       string `env:"STRIPE_PRICE_ONE_TIME,required,notEmpty"`
	PriceInstallment   string `env:"STRIPE_PRICE_INSTALLMENT,required,notEmpty"`
	CheckoutOrigin     string `env:"CHECKOUT_ORIGIN" envDefault:"http://localhost:8080"`
	InstallmentLimit   int    `env:"INSTALLMENT_LIMIT" envDefault:"3"`
	InstallmentCron    string `env:"INSTALLMENT_CRON" envDefault:"0 3 * * *"`
	DisableInstallment bool   `env:"DISABLE_INSTALLMENT_CRON" envDefault:"false"`

	// Optional API key for the admin endpoints (analytics, installment
	// management). Empty leaves them open, matching local development.
	AdminAPIKey string `env:"ADMIN_API_KEY"`
}

// ServerAddr returns the listen address in :port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// Load parses environment variables and returns a Config struct.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.InstallmentLimit <= 0 {
		return Config{}, errors.New("INSTALLMENT_LIMIT must be positive")
	}
	return cfg, nil
}
