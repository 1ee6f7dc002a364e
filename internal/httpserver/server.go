package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paraisocambury/checkout-service/internal/auth"
	"github.com/paraisocambury/checkout-service/internal/config"
	"github.com/paraisocambury/checkout-service/internal/handlers"
	"github.com/paraisocambury/checkout-service/internal/payments"
	"github.com/paraisocambury/checkout-service/internal/store"
)

// corsMiddleware opens the API to the donation landing page. All endpoints
// are browser-called from the marketing site, so the origin is unrestricted.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type, stripe-signature, x-admin-key")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// NewRouter wires public endpoints and the admin APIs.
// Public: /health, /ready, tracking, payment and webhook endpoints.
// Admin (optional X-Admin-Key): analytics and installment management.
func NewRouter(cfg config.Config, st *store.PostgresStore, provider payments.Provider, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	handlers.RegisterTrackingRoutes(r, st, logger)
	handlers.RegisterPaymentRoutes(r, provider, logger)
	handlers.RegisterWebhookRoutes(r, st, cfg.StripeWebhookKey, logger)

	adminGroup := r.Group("/")
	adminGroup.Use(auth.AdminKeyMiddleware(cfg.AdminAPIKey))

	handlers.RegisterAnalyticsRoutes(adminGroup, st, logger)
	handlers.RegisterInstallmentRoutes(adminGroup, provider, logger)

	return r
}
