// Package funnel computes the conversion analytics report from raw checkout
// events and legacy payment logs. All functions are pure: the same inputs
// always produce the same report, which is recomputed fully on every call.
package funnel

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/paraisocambury/checkout-service/internal/models"
)

// Steps of the conversion funnel, in order. A session counts toward a step
// when it contains at least one event of that type.
var funnelSteps = []string{
	models.EventFormSubmitted,
	models.EventPaymentModalOpened,
	models.EventPaymentMethodSelected,
	models.EventCheckoutStarted,
	models.EventPaymentCompleted,
}

// BuildReport aggregates the given window of events and legacy logs into the
// analytics document. now anchors the daily series; days is the trailing
// window length and must be >= 1.
func BuildReport(events []models.CheckoutEvent, logs []models.PaymentLog, days int, now time.Time) models.AnalyticsReport {
	if days < 1 {
		days = 1
	}
	return models.AnalyticsReport{
		Period:         fmt.Sprintf("%d days", days),
		Funnel:         funnelMetrics(events, logs),
		Daily:          dailyMetrics(events, logs, days, now),
		PaymentMethods: paymentMethodMetrics(events, logs),
		TotalEvents:    len(events) + len(logs),
		GeneratedAt:    now.UTC(),
	}
}

// session groups the event types seen for one session id.
type session struct {
	types map[string]bool
}

// groupSessions buckets events by session id and adds each legacy log as a
// synthetic one-event session (legacy rows predate session tracking).
func groupSessions(events []models.CheckoutEvent, logs []models.PaymentLog) map[string]*session {
	sessions := map[string]*session{}

	for _, ev := range events {
		s, ok := sessions[ev.SessionID]
		if !ok {
			s = &session{types: map[string]bool{}}
			sessions[ev.SessionID] = s
		}
		s.types[ev.EventType] = true
	}

	for _, log := range logs {
		sessions["legacy_"+log.ID] = &session{
			types: map[string]bool{models.EventPaymentMethodSelected: true},
		}
	}

	return sessions
}

// funnelMetrics counts how many sessions reached each step and derives
// conditional conversion percentages. The first step is measured against
// total sessions; every later step against the immediately preceding one.
func funnelMetrics(events []models.CheckoutEvent, logs []models.PaymentLog) models.FunnelMetrics {
	sessions := groupSessions(events, logs)
	total := len(sessions)

	counts := map[string]int{}
	for _, s := range sessions {
		for _, step := range funnelSteps {
			if s.types[step] {
				counts[step]++
			}
		}
	}

	steps := make(map[string]models.StepMetric, len(funnelSteps))
	prev := total
	for _, step := range funnelSteps {
		steps[step] = models.StepMetric{
			Count:      counts[step],
			Percentage: percentage(counts[step], prev),
		}
		prev = counts[step]
	}

	started := counts[models.EventCheckoutStarted]
	completed := counts[models.EventPaymentCompleted]

	return models.FunnelMetrics{
		TotalSessions:     total,
		Steps:             steps,
		AbandonmentRate:   percentage(started-completed, started),
		OverallConversion: percentage(completed, total),
	}
}

// dailyMetrics produces exactly `days` entries, oldest first, zero-filled
// for dates with no activity. Days are UTC calendar dates.
func dailyMetrics(events []models.CheckoutEvent, logs []models.PaymentLog, days int, now time.Time) []models.DailyMetric {
	eventsByDay := map[string]int{}
	for _, ev := range events {
		eventsByDay[ev.CreatedAt.UTC().Format("2006-01-02")]++
	}
	logsByDay := map[string]int{}
	for _, log := range logs {
		logsByDay[log.CreatedAt.UTC().Format("2006-01-02")]++
	}

	daily := make([]models.DailyMetric, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.UTC().AddDate(0, 0, -i).Format("2006-01-02")
		daily = append(daily, models.DailyMetric{
			Date:              date,
			Events:            eventsByDay[date],
			PaymentSelections: logsByDay[date],
			TotalActivity:     eventsByDay[date] + logsByDay[date],
		})
	}
	return daily
}

// paymentMethodMetrics tallies payment_method_selected events plus every
// legacy log's method, sorted by count descending (method name breaks ties
// so the order is stable).
func paymentMethodMetrics(events []models.CheckoutEvent, logs []models.PaymentLog) []models.PaymentMethodMetric {
	counts := map[string]int{}
	for _, ev := range events {
		if ev.EventType == models.EventPaymentMethodSelected && ev.PaymentMethod != "" {
			counts[ev.PaymentMethod]++
		}
	}
	for _, log := range logs {
		counts[log.PaymentMethod]++
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	metrics := make([]models.PaymentMethodMetric, 0, len(counts))
	for method, count := range counts {
		metrics = append(metrics, models.PaymentMethodMetric{
			PaymentMethod: method,
			Count:         count,
			Percentage:    percentage(count, total),
		})
	}
	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Count != metrics[j].Count {
			return metrics[i].Count > metrics[j].Count
		}
		return metrics[i].PaymentMethod < metrics[j].PaymentMethod
	})
	return metrics
}

// percentage returns part/whole as a percentage rounded to 2 decimals,
// and 0 (not NaN/Inf) when the denominator is zero.
func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*100*100) / 100
}
