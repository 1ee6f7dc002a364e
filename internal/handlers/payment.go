package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paraisocambury/checkout-service/internal/models"
	"github.com/paraisocambury/checkout-service/internal/payments"
)

// RegisterPaymentRoutes registers the Stripe-facing endpoints.
//
// POST /create-payment
// - builds a hosted checkout session and returns its redirect URL
// - no idempotency guard: a client double-submit creates two provider
//   sessions for the same logical donation (documented limitation)
//
// POST /check-subscription-status
// - reports installment-plan payment progress for a donor email
func RegisterPaymentRoutes(r gin.IRoutes, provider payments.Provider, logger *slog.Logger) {
	r.POST("/create-payment", func(c *gin.Context) {
		var req models.CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		if req.Name == "" || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and email are required"})
			return
		}
		switch req.PaymentMode {
		case "", models.PaymentModeOneTime, models.PaymentModeInstallment:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment_mode must be one_time or installment"})
			return
		}

		// The tracking id travels as client_reference_id so the completion
		// webhook can correlate the payment back to funnel events.
		trackingID := uuid.New().String()
		origin := c.GetHeader("Origin")

		url, err := provider.CreateCheckoutSession(c.Request.Context(), req, origin, trackingID)
		if err != nil {
			logger.Error("creating checkout session failed", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.CreatePaymentResponse{URL: url})
	})

	r.POST("/check-subscription-status", func(c *gin.Context) {
		var req struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
			return
		}

		status, err := provider.SubscriptionStatus(c.Request.Context(), req.Email)
		if err != nil {
			logger.Error("checking subscription status failed", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, status)
	})
}

// RegisterInstallmentRoutes registers the installment management scan.
// The same scan also runs on a cron schedule; the endpoint exists so an
// operator can trigger it on demand.
//
// POST /manage-installments
// - cancels (at period end) every active installment subscription that has
//   collected the configured number of payments
func RegisterInstallmentRoutes(r gin.IRoutes, provider payments.Provider, logger *slog.Logger) {
	r.POST("/manage-installments", func(c *gin.Context) {
		results, err := provider.ManageInstallments(c.Request.Context())
		if err != nil {
			logger.Error("installment scan failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if results == nil {
			results = []models.InstallmentAction{}
		}

		c.JSON(http.StatusOK, models.ManageInstallmentsResponse{
			Success:   true,
			Processed: len(results),
			Results:   results,
		})
	})
}
