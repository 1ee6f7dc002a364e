package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/paraisocambury/checkout-service/internal/models"
)

// TrackingStore combines the writes needed by the tracking endpoints.
type TrackingStore interface {
	EventStore
	PaymentLogStore
}

// RegisterTrackingRoutes registers the funnel tracking endpoints.
//
// POST /track-checkout-event
// - event_type required; everything else optional
// - session_id generated server-side when omitted
// - append-only: retried client calls produce duplicate rows, by contract
//
// POST /log-payment
// - legacy per-payment-attempt log (name, email, payment_method required)
// - pagou_pix=true marks the newest log matching (name, email) as confirmed
func RegisterTrackingRoutes(r gin.IRoutes, st TrackingStore, logger *slog.Logger) {
	r.POST("/track-checkout-event", func(c *gin.Context) {
		var req models.TrackEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		if req.EventType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_type is required"})
			return
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		eventID, err := st.InsertEvent(c.Request.Context(), models.CheckoutEvent{
			SessionID:         sessionID,
			EventType:         req.EventType,
			UserName:          req.UserName,
			UserEmail:         req.UserEmail,
			PaymentMethod:     req.PaymentMethod,
			CheckoutSessionID: req.CheckoutSessionID,
			Metadata:          req.Metadata,
		})
		if err != nil {
			logger.Error("event insert failed", "event_type", req.EventType, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.TrackEventResponse{
			Success:   true,
			EventID:   eventID,
			SessionID: sessionID,
		})
	})

	r.POST("/log-payment", func(c *gin.Context) {
		var req models.LogPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		if req.Name == "" || req.Email == "" || req.PaymentMethod == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: name, email, and payment_method are required"})
			return
		}

		// A PIX confirmation is a second write to the logical record created
		// when the donor picked the PIX path. The only link is (name, email).
		if req.PagouPix != nil && *req.PagouPix {
			id, found, err := st.ConfirmPixPayment(c.Request.Context(), req.Name, req.Email)
			if err != nil {
				logger.Error("pix confirmation failed", "email", req.Email, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if found {
				c.JSON(http.StatusOK, models.LogPaymentResponse{Success: true, ID: id})
				return
			}
			// No earlier row to confirm: fall through and insert a fresh one.
		}

		id, err := st.InsertPaymentLog(c.Request.Context(), models.PaymentLog{
			Name:          req.Name,
			Email:         req.Email,
			Telefone:      req.Telefone,
			CPF:           req.CPF,
			PaymentMethod: req.PaymentMethod,
			Aceitou:       true,
			PagouPix:      req.PagouPix,
		})
		if err != nil {
			logger.Error("payment log insert failed", "email", req.Email, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.LogPaymentResponse{Success: true, ID: id})
	})
}
