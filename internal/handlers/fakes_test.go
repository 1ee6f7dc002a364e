package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/paraisocambury/checkout-service/internal/models"
)

// fakeStore is an in-memory TrackingStore + AnalyticsStore for handler tests.
type fakeStore struct {
	events      []models.CheckoutEvent
	logs        []models.PaymentLog
	confirmed   []string
	failInserts bool
}

func (f *fakeStore) InsertEvent(_ context.Context, ev models.CheckoutEvent) (string, error) {
	if f.failInserts {
		return "", errors.New("insert failed")
	}
	ev.ID = "evt-" + ev.EventType
	ev.CreatedAt = time.Now().UTC()
	f.events = append(f.events, ev)
	return ev.ID, nil
}

func (f *fakeStore) InsertPaymentLog(_ context.Context, log models.PaymentLog) (string, error) {
	if f.failInserts {
		return "", errors.New("insert failed")
	}
	log.ID = "log-" + log.Email
	log.CreatedAt = time.Now().UTC()
	f.logs = append(f.logs, log)
	return log.ID, nil
}

func (f *fakeStore) ConfirmPixPayment(_ context.Context, name, email string) (string, bool, error) {
	for i := len(f.logs) - 1; i >= 0; i-- {
		if f.logs[i].Name == name && f.logs[i].Email == email {
			t := true
			f.logs[i].PagouPix = &t
			f.confirmed = append(f.confirmed, f.logs[i].ID)
			return f.logs[i].ID, true, nil
		}
	}
	return "", false, nil
}

func (f *fakeStore) ListEventsSince(_ context.Context, since time.Time) ([]models.CheckoutEvent, error) {
	var out []models.CheckoutEvent
	for _, ev := range f.events {
		if !ev.CreatedAt.Before(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPaymentLogsSince(_ context.Context, since time.Time) ([]models.PaymentLog, error) {
	var out []models.PaymentLog
	for _, log := range f.logs {
		if !log.CreatedAt.Before(since) {
			out = append(out, log)
		}
	}
	return out, nil
}

// fakeProvider is a canned payments.Provider for handler tests.
type fakeProvider struct {
	url        string
	err        error
	status     models.SubscriptionStatus
	actions    []models.InstallmentAction
	lastOrigin string
	lastReq    models.CreatePaymentRequest
	trackingID string
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req models.CreatePaymentRequest, origin, trackingID string) (string, error) {
	f.lastReq = req
	f.lastOrigin = origin
	f.trackingID = trackingID
	return f.url, f.err
}

func (f *fakeProvider) SubscriptionStatus(_ context.Context, _ string) (models.SubscriptionStatus, error) {
	return f.status, f.err
}

func (f *fakeProvider) ManageInstallments(_ context.Context) ([]models.InstallmentAction, error) {
	return f.actions, f.err
}
