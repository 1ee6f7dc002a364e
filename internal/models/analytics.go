package models

import "time"

// AnalyticsRequest is the POST /get-conversion-analytics payload.
type AnalyticsRequest struct {
	Days int `json:"days,omitempty"`
}

// StepMetric is one funnel step: how many sessions reached it and the
// conditional conversion percentage relative to the previous step.
type StepMetric struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// FunnelMetrics is the session-level funnel block of the analytics report.
type FunnelMetrics struct {
	TotalSessions     int                   `json:"total_sessions"`
	Steps             map[string]StepMetric `json:"steps"`
	AbandonmentRate   float64               `json:"abandonment_rate"`
	OverallConversion float64               `json:"overall_conversion"`
}

// DailyMetric is one calendar day of activity, zero-filled for quiet days.
type DailyMetric struct {
	Date              string `json:"date"`
	Events            int    `json:"events"`
	PaymentSelections int    `json:"payment_selections"`
	TotalActivity     int    `json:"total_activity"`
}

// PaymentMethodMetric is one payment method's share of all selections.
type PaymentMethodMetric struct {
	PaymentMethod string  `json:"payment_method"`
	Count         int     `json:"count"`
	Percentage    float64 `json:"percentage"`
}

// AnalyticsReport is the full document returned by
// POST /get-conversion-analytics. Recomputed from scratch on every call.
type AnalyticsReport struct {
	Period         string                `json:"period"`
	Funnel         FunnelMetrics         `json:"funnel"`
	Daily          []DailyMetric         `json:"daily"`
	PaymentMethods []PaymentMethodMetric `json:"payment_methods"`
	TotalEvents    int                   `json:"total_events"`
	GeneratedAt    time.Time             `json:"generated_at"`
}
