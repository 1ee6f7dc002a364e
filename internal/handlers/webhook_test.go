package handlers

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/paraisocambury/checkout-service/internal/models"
)

const testWebhookSecret = "whsec_test_secret"

func newWebhookRouter(st EventStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterWebhookRoutes(r, st, testWebhookSecret, testLogger())
	return r
}

// signedEvent builds a Stripe event payload with a valid v1 signature.
func signedEvent(t *testing.T, eventType string, object map[string]any) (body []byte, header string) {
	t.Helper()

	raw, err := json.Marshal(object)
	require.NoError(t, err)

	payload, err := json.Marshal(map[string]any{
		"id":          "evt_test_1",
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"data":        map[string]any{"object": json.RawMessage(raw)},
	})
	require.NoError(t, err)

	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testWebhookSecret)
	return payload, fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func postWebhook(r *gin.Engine, body []byte, sigHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhook_RejectsInvalidSignature(t *testing.T) {
	st := &fakeStore{}
	r := newWebhookRouter(st)

	body, _ := signedEvent(t, "checkout.session.completed", map[string]any{"id": "cs_1"})

	w := postWebhook(r, body, "t=123,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, st.events)

	w = postWebhook(r, body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, st.events)
}

func TestWebhook_CompletedInstallmentSessionTrackedAsParcelado(t *testing.T) {
	st := &fakeStore{}
	r := newWebhookRouter(st)

	body, sig := signedEvent(t, "checkout.session.completed", map[string]any{
		"id":                  "cs_123",
		"client_reference_id": "track-abc",
		"customer_email":      "ana@example.com",
		"amount_total":        30000,
		"currency":            "brl",
		"payment_status":      "paid",
		"metadata": map[string]any{
			"customer_name": "Ana",
			"payment_mode":  "installment",
		},
	})

	w := postWebhook(r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)

	require.Len(t, st.events, 1)
	ev := st.events[0]
	assert.Equal(t, models.EventPaymentCompleted, ev.EventType)
	assert.Equal(t, "track-abc", ev.SessionID)
	assert.Equal(t, models.MethodParcelado, ev.PaymentMethod)
	assert.Equal(t, "cs_123", ev.CheckoutSessionID)
	assert.Equal(t, "ana@example.com", ev.UserEmail)
	assert.Equal(t, "installment", ev.Metadata["payment_mode"])
	assert.EqualValues(t, 30000, ev.Metadata["amount_total"])
}

func TestWebhook_CompletedSessionWithoutModeDefaultsToAVista(t *testing.T) {
	st := &fakeStore{}
	r := newWebhookRouter(st)

	body, sig := signedEvent(t, "checkout.session.completed", map[string]any{
		"id":             "cs_456",
		"customer_email": "bia@example.com",
	})

	w := postWebhook(r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, st.events, 1)
	assert.Equal(t, models.MethodAVista, st.events[0].PaymentMethod)
	// No client reference: the fallback session id groups these events.
	assert.Equal(t, "stripe_webhook_session", st.events[0].SessionID)
}

func TestWebhook_InvoicePaymentTrackedAsInstallment(t *testing.T) {
	st := &fakeStore{}
	r := newWebhookRouter(st)

	body, sig := signedEvent(t, "invoice.payment_succeeded", map[string]any{
		"id":             "in_789",
		"customer_email": "ana@example.com",
		"amount_paid":    10000,
		"currency":       "brl",
		"billing_reason": "subscription_cycle",
	})

	w := postWebhook(r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, st.events, 1)
	ev := st.events[0]
	assert.Equal(t, models.EventInstallmentCompleted, ev.EventType)
	assert.Equal(t, "stripe_subscription_payment", ev.SessionID)
	assert.Equal(t, models.MethodParcelado, ev.PaymentMethod)
	assert.Equal(t, "in_789", ev.Metadata["stripe_invoice_id"])
}

func TestWebhook_ExpiredSessionTracked(t *testing.T) {
	st := &fakeStore{}
	r := newWebhookRouter(st)

	body, sig := signedEvent(t, "checkout.session.expired", map[string]any{
		"id":                  "cs_exp",
		"client_reference_id": "track-xyz",
	})

	w := postWebhook(r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, st.events, 1)
	ev := st.events[0]
	assert.Equal(t, models.EventCheckoutExpired, ev.EventType)
	assert.Equal(t, "track-xyz", ev.SessionID)
	assert.Equal(t, "session_expired", ev.Metadata["expiration_reason"])
}

func TestWebhook_UnhandledEventTypeIsIgnored(t *testing.T) {
	st := &fakeStore{}
	r := newWebhookRouter(st)

	body, sig := signedEvent(t, "charge.refunded", map[string]any{"id": "ch_1"})

	w := postWebhook(r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
	assert.Empty(t, st.events)
}

func TestWebhook_TrackingFailureStillAcknowledges(t *testing.T) {
	st := &fakeStore{failInserts: true}
	r := newWebhookRouter(st)

	body, sig := signedEvent(t, "checkout.session.completed", map[string]any{
		"id": "cs_fail",
	})

	w := postWebhook(r, body, sig)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
}
