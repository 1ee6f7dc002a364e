package handlers

import (
	"context"
	"time"

	"github.com/paraisocambury/checkout-service/internal/models"
)

// EventStore is the write side of the checkout event log.
type EventStore interface {
	InsertEvent(ctx context.Context, ev models.CheckoutEvent) (string, error)
}

// PaymentLogStore is the write side of the legacy payment log.
type PaymentLogStore interface {
	InsertPaymentLog(ctx context.Context, log models.PaymentLog) (string, error)
	ConfirmPixPayment(ctx context.Context, name, email string) (string, bool, error)
}

// AnalyticsStore is the read side used by the aggregation endpoint.
type AnalyticsStore interface {
	ListEventsSince(ctx context.Context, since time.Time) ([]models.CheckoutEvent, error)
	ListPaymentLogsSince(ctx context.Context, since time.Time) ([]models.PaymentLog, error)
}
