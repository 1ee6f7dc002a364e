package payments

import (
	"time"

	stripe "github.com/stripe/stripe-go/v74"

	"github.com/paraisocambury/checkout-service/internal/models"
)

// InstallmentAction decides what to do with an active installment
// subscription given its paid-invoice count. Pure: no API calls.
func InstallmentAction(sub *stripe.Subscription, paidInvoices, limit int) models.InstallmentAction {
	if paidInvoices >= limit {
		action := models.InstallmentAction{
			SubscriptionID: sub.ID,
			Action:         "canceled",
			PaymentsMade:   paidInvoices,
		}
		if sub.Customer != nil {
			action.CustomerEmail = sub.Customer.Email
			if action.CustomerEmail == "" {
				// Expanded customer objects are not requested on list calls,
				// so usually only the id is available.
				action.CustomerEmail = sub.Customer.ID
			}
		}
		return action
	}
	return models.InstallmentAction{
		SubscriptionID:    sub.ID,
		Action:            "active",
		PaymentsMade:      paidInvoices,
		PaymentsRemaining: limit - paidInvoices,
	}
}

// SubscriptionDetail converts a Stripe subscription plus its paid-invoice
// tally into the payment-progress summary returned to the dashboard.
func SubscriptionDetail(sub *stripe.Subscription, paidInvoices int, totalPaid int64, limit int) *models.SubscriptionDetail {
	remaining := limit - paidInvoices
	if remaining < 0 {
		remaining = 0
	}

	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	detail := &models.SubscriptionDetail{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   periodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		PaymentsMade:       paidInvoices,
		PaymentsRemaining:  remaining,
		TotalAmountPaid:    totalPaid,
		Metadata:           sub.Metadata,
	}
	if remaining > 0 {
		detail.NextPaymentDate = &periodEnd
	}
	return detail
}
