// Package scheduler runs the installment management scan on a cron
// schedule so subscriptions that collected all payments are cancelled even
// when nobody triggers the endpoint manually.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/paraisocambury/checkout-service/internal/payments"
)

// scanTimeout bounds one full installment scan including Stripe calls.
const scanTimeout = 5 * time.Minute

// Scheduler owns the periodic installment management job.
type Scheduler struct {
	cron     *cron.Cron
	provider payments.Provider
	logger   *slog.Logger
}

// New creates a scheduler around the payment provider.
func New(provider payments.Provider, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		provider: provider,
		logger:   logger,
	}
}

// Start registers the installment scan under the given cron spec and begins
// running it.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.runScan)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", spec, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running scan to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runScan() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	results, err := s.provider.ManageInstallments(ctx)
	if err != nil {
		s.logger.Error("scheduled installment scan failed", "error", err)
		return
	}

	canceled := 0
	for _, r := range results {
		if r.Action == "canceled" {
			canceled++
		}
	}
	s.logger.Info("scheduled installment scan finished", "processed", len(results), "canceled", canceled)
}
