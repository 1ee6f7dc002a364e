package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paraisocambury/checkout-service/internal/funnel"
	"github.com/paraisocambury/checkout-service/internal/models"
)

// defaultAnalyticsDays is the trailing window when the request omits days.
const defaultAnalyticsDays = 30

// RegisterAnalyticsRoutes registers the admin aggregation endpoint.
//
// POST /get-conversion-analytics
// - body {days?}, defaults to 30
// - recomputes the full report on every call; event volume is small enough
//   that no caching is warranted
func RegisterAnalyticsRoutes(r gin.IRoutes, st AnalyticsStore, logger *slog.Logger) {
	r.POST("/get-conversion-analytics", func(c *gin.Context) {
		var req models.AnalyticsRequest
		// An empty or malformed body falls back to the defaults, matching
		// the dashboard's optional payload.
		_ = c.ShouldBindJSON(&req)

		days := req.Days
		if days < 1 {
			days = defaultAnalyticsDays
		}

		now := time.Now().UTC()
		since := now.AddDate(0, 0, -days)

		events, err := st.ListEventsSince(c.Request.Context(), since)
		if err != nil {
			logger.Error("listing checkout events failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		logs, err := st.ListPaymentLogsSince(c.Request.Context(), since)
		if err != nil {
			logger.Error("listing payment logs failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		report := funnel.BuildReport(events, logs, days, now)
		logger.Info("analytics computed",
			"days", days,
			"total_sessions", report.Funnel.TotalSessions,
			"total_events", report.TotalEvents,
		)

		c.JSON(http.StatusOK, report)
	})
}
