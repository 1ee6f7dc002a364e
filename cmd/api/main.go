package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/paraisocambury/checkout-service/internal/config"
	"github.com/paraisocambury/checkout-service/internal/httpserver"
	"github.com/paraisocambury/checkout-service/internal/logging"
	"github.com/paraisocambury/checkout-service/internal/payments"
	"github.com/paraisocambury/checkout-service/internal/scheduler"
	"github.com/paraisocambury/checkout-service/internal/store"
)

// main boots the service: config → DB → schema → Stripe → HTTP server.
func main() {
	// Optional .env for local development; env vars win in deployment.
	_ = godotenv.Load()

	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config failed", "error", err)
		os.Exit(1)
	}

	// Connect to durable storage (Postgres) using a connection pool.
	db, err := store.NewPostgresStore(cfg.DBURL)
	if err != nil {
		logger.Error("connecting to database failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Ensure required tables/indexes exist so `docker compose up --build` is enough.
	if err := db.EnsureSchema(); err != nil {
		logger.Error("applying schema failed", "error", err)
		os.Exit(1)
	}

	provider := payments.New(cfg.StripeSecretKey, payments.Config{
		PriceOneTime:     cfg.PriceOneTime,
		PriceInstallment: cfg.PriceInstallment,
		CheckoutOrigin:   cfg.CheckoutOrigin,
		InstallmentLimit: cfg.InstallmentLimit,
	}, logger)

	// The installment scan also runs periodically so fully-paid plans are
	// cancelled without operator intervention.
	if !cfg.DisableInstallment {
		sched := scheduler.New(provider, logger)
		if err := sched.Start(cfg.InstallmentCron); err != nil {
			logger.Error("starting scheduler failed", "error", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	router := httpserver.NewRouter(cfg, db, provider, logger)

	logger.Info("server started", "addr", cfg.ServerAddr())
	if err := router.Run(cfg.ServerAddr()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
