package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	"github.com/paraisocambury/checkout-service/internal/models"
)

// Fallback session ids for webhook events that carry no client reference.
const (
	webhookSessionFallback = "stripe_webhook_session"
	subscriptionSessionID  = "stripe_subscription_payment"
	expiredSessionFallback = "stripe_expired_session"
)

// maxWebhookBodyBytes bounds the webhook payload read.
const maxWebhookBodyBytes = 1 << 20

// RegisterWebhookRoutes registers the Stripe event callback.
//
// POST /stripe-webhook
// - the Stripe-Signature header is verified against the endpoint secret;
//   an invalid signature is rejected with 400
// - once the event is verified and parsed, the response is always
//   {received:true}: tracking failures are logged and swallowed so Stripe
//   never retries delivery because of an internal analytics problem
func RegisterWebhookRoutes(r gin.IRoutes, st EventStore, endpointSecret string, logger *slog.Logger) {
	r.POST("/stripe-webhook", func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}

		event, err := webhook.ConstructEvent(body, c.GetHeader("Stripe-Signature"), endpointSecret)
		if err != nil {
			logger.Error("webhook signature verification failed", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}

		processWebhookEvent(c.Request.Context(), st, logger, event)

		c.JSON(http.StatusOK, gin.H{"received": true})
	})
}

// processWebhookEvent re-emits provider callbacks as tracked funnel events.
// All persistence errors are logged and swallowed: the webhook must always
// acknowledge receipt once the payload is verified.
func processWebhookEvent(ctx context.Context, st EventStore, logger *slog.Logger, event stripe.Event) {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			logger.Error("parsing checkout session failed", "error", err)
			return
		}
		trackCompletedCheckout(ctx, st, logger, &sess)

	case "invoice.payment_succeeded":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			logger.Error("parsing invoice failed", "error", err)
			return
		}
		trackInstallmentPayment(ctx, st, logger, &inv)

	case "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			logger.Error("parsing checkout session failed", "error", err)
			return
		}
		trackExpiredCheckout(ctx, st, logger, &sess)

	default:
		logger.Info("unhandled webhook event type", "type", event.Type)
	}
}

// paymentMethodLabel maps checkout session metadata to the dashboard label.
func paymentMethodLabel(paymentMode string) string {
	if paymentMode == models.PaymentModeInstallment {
		return models.MethodParcelado
	}
	return models.MethodAVista
}

func trackCompletedCheckout(ctx context.Context, st EventStore, logger *slog.Logger, sess *stripe.CheckoutSession) {
	paymentMode := sess.Metadata["payment_mode"]
	if paymentMode == "" {
		paymentMode = models.PaymentModeOneTime
	}

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}

	sessionID := sess.ClientReferenceID
	if sessionID == "" {
		sessionID = webhookSessionFallback
	}

	_, err := st.InsertEvent(ctx, models.CheckoutEvent{
		SessionID:         sessionID,
		EventType:         models.EventPaymentCompleted,
		UserName:          sess.Metadata["customer_name"],
		UserEmail:         email,
		PaymentMethod:     paymentMethodLabel(paymentMode),
		CheckoutSessionID: sess.ID,
		Metadata: map[string]interface{}{
			"timestamp":         time.Now().UTC().Format(time.RFC3339),
			"stripe_session_id": sess.ID,
			"amount_total":      sess.AmountTotal,
			"currency":          string(sess.Currency),
			"payment_status":    string(sess.PaymentStatus),
			"payment_mode":      paymentMode,
		},
	})
	if err != nil {
		logger.Error("tracking payment completion failed", "checkout_session_id", sess.ID, "error", err)
		return
	}
	logger.Info("payment completion tracked", "checkout_session_id", sess.ID, "payment_mode", paymentMode)
}

func trackInstallmentPayment(ctx context.Context, st EventStore, logger *slog.Logger, inv *stripe.Invoice) {
	_, err := st.InsertEvent(ctx, models.CheckoutEvent{
		SessionID:     subscriptionSessionID,
		EventType:     models.EventInstallmentCompleted,
		UserEmail:     inv.CustomerEmail,
		PaymentMethod: models.MethodParcelado,
		Metadata: map[string]interface{}{
			"timestamp":         time.Now().UTC().Format(time.RFC3339),
			"stripe_invoice_id": inv.ID,
			"amount_paid":       inv.AmountPaid,
			"currency":          string(inv.Currency),
			"billing_reason":    string(inv.BillingReason),
		},
	})
	if err != nil {
		logger.Error("tracking installment payment failed", "invoice_id", inv.ID, "error", err)
		return
	}
	logger.Info("installment payment tracked", "invoice_id", inv.ID)
}

func trackExpiredCheckout(ctx context.Context, st EventStore, logger *slog.Logger, sess *stripe.CheckoutSession) {
	sessionID := sess.ClientReferenceID
	if sessionID == "" {
		sessionID = expiredSessionFallback
	}

	_, err := st.InsertEvent(ctx, models.CheckoutEvent{
		SessionID:         sessionID,
		EventType:         models.EventCheckoutExpired,
		CheckoutSessionID: sess.ID,
		Metadata: map[string]interface{}{
			"timestamp":         time.Now().UTC().Format(time.RFC3339),
			"stripe_session_id": sess.ID,
			"expiration_reason": "session_expired",
		},
	})
	if err != nil {
		logger.Error("tracking checkout expiration failed", "checkout_session_id", sess.ID, "error", err)
		return
	}
	logger.Info("checkout expiration tracked", "checkout_session_id", sess.ID)
}
