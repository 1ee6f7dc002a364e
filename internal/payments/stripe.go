// Package payments wraps the Stripe API for the donation checkout flow:
// hosted checkout session creation, installment subscription status and the
// installment management scan. Decision logic is kept in pure helpers so it
// can be tested without a Stripe account.
package payments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"github.com/paraisocambury/checkout-service/internal/models"
)

// Config carries the static Stripe configuration: price ids are deploy-time
// constants, never computed.
type Config struct {
	PriceOneTime     string
	PriceInstallment string
	CheckoutOrigin   string
	InstallmentLimit int
}

// Provider is the payment-provider surface the HTTP handlers depend on.
type Provider interface {
	// CreateCheckoutSession builds a hosted checkout session and returns its
	// redirect URL. trackingID is forwarded as client_reference_id so the
	// webhook can correlate the payment back to funnel events. origin
	// overrides the configured success/cancel URL base when non-empty.
	CreateCheckoutSession(ctx context.Context, req models.CreatePaymentRequest, origin, trackingID string) (string, error)

	// SubscriptionStatus reports installment-plan progress for a donor email.
	SubscriptionStatus(ctx context.Context, email string) (models.SubscriptionStatus, error)

	// ManageInstallments scans active installment subscriptions and cancels
	// (at period end) any that collected the configured number of payments.
	ManageInstallments(ctx context.Context) ([]models.InstallmentAction, error)
}

// Client is the Stripe-backed Provider.
type Client struct {
	api *client.API
	cfg Config
	log *slog.Logger
}

// New builds a Stripe client from the secret key.
func New(secretKey string, cfg Config, logger *slog.Logger) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api, cfg: cfg, log: logger}
}

// checkoutPlan maps a payment mode to its Stripe price and checkout mode.
func (c *Client) checkoutPlan(paymentMode string) (price string, mode stripe.CheckoutSessionMode, err error) {
	switch paymentMode {
	case models.PaymentModeInstallment:
		return c.cfg.PriceInstallment, stripe.CheckoutSessionModeSubscription, nil
	case models.PaymentModeOneTime, "":
		return c.cfg.PriceOneTime, stripe.CheckoutSessionModePayment, nil
	default:
		return "", "", fmt.Errorf("unknown payment_mode %q", paymentMode)
	}
}

// CreateCheckoutSession implements Provider. There is deliberately no
// idempotency guard: a double-submit creates two provider sessions, matching
// the documented limitation of the checkout flow.
func (c *Client) CreateCheckoutSession(ctx context.Context, req models.CreatePaymentRequest, origin, trackingID string) (string, error) {
	price, mode, err := c.checkoutPlan(req.PaymentMode)
	if err != nil {
		return "", err
	}
	if origin == "" {
		origin = c.cfg.CheckoutOrigin
	}

	params := &stripe.CheckoutSessionParams{
		CustomerEmail:     stripe.String(req.Email),
		ClientReferenceID: stripe.String(trackingID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(price),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(mode)),
		SuccessURL: stripe.String(origin + "/?payment=success"),
		CancelURL:  stripe.String(origin + "/?payment=cancelled"),
		// Brazilian donor defaults: checkout in Portuguese, card only.
		// PIX is confirmed out-of-band via log-payment.
		Locale:                   stripe.String("pt-BR"),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
	}
	params.Context = ctx
	params.AddMetadata("customer_name", req.Name)
	params.AddMetadata("customer_cpf", req.CPF)
	if req.PaymentMode == models.PaymentModeInstallment {
		params.AddMetadata("payment_mode", models.PaymentModeInstallment)
	} else {
		params.AddMetadata("payment_mode", models.PaymentModeOneTime)
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}

	c.log.Info("checkout session created",
		"checkout_session_id", sess.ID,
		"payment_mode", req.PaymentMode,
		"tracking_session_id", trackingID,
	)
	return sess.URL, nil
}

// SubscriptionStatus implements Provider.
func (c *Client) SubscriptionStatus(ctx context.Context, email string) (models.SubscriptionStatus, error) {
	custParams := &stripe.CustomerListParams{}
	custParams.Context = ctx
	custParams.Limit = stripe.Int64(1)
	custParams.Filters.AddFilter("email", "", email)

	custIter := c.api.Customers.List(custParams)
	if !custIter.Next() {
		if err := custIter.Err(); err != nil {
			return models.SubscriptionStatus{}, err
		}
		return models.SubscriptionStatus{
			HasSubscription: false,
			Message:         "No customer found with this email",
		}, nil
	}
	customerID := custIter.Customer().ID

	subParams := &stripe.SubscriptionListParams{}
	subParams.Context = ctx
	subParams.Limit = stripe.Int64(10)
	subParams.Filters.AddFilter("customer", "", customerID)
	subParams.Filters.AddFilter("price", "", c.cfg.PriceInstallment)

	var active *stripe.Subscription
	subIter := c.api.Subscriptions.List(subParams)
	for subIter.Next() {
		s := subIter.Subscription()
		if s.Status == stripe.SubscriptionStatusActive || s.Status == stripe.SubscriptionStatusTrialing {
			active = s
			break
		}
	}
	if err := subIter.Err(); err != nil {
		return models.SubscriptionStatus{}, err
	}
	if active == nil {
		return models.SubscriptionStatus{
			HasSubscription: false,
			Message:         "No active installment subscription found",
		}, nil
	}

	paid, totalPaid, err := c.paidInvoices(ctx, active.ID)
	if err != nil {
		return models.SubscriptionStatus{}, err
	}

	return models.SubscriptionStatus{
		HasSubscription: true,
		Subscription:    SubscriptionDetail(active, paid, totalPaid, c.cfg.InstallmentLimit),
	}, nil
}

// ManageInstallments implements Provider. Per-subscription failures are
// reported in the result list and never abort the scan.
func (c *Client) ManageInstallments(ctx context.Context) ([]models.InstallmentAction, error) {
	subParams := &stripe.SubscriptionListParams{}
	subParams.Context = ctx
	subParams.Limit = stripe.Int64(100)
	subParams.Filters.AddFilter("price", "", c.cfg.PriceInstallment)
	subParams.Filters.AddFilter("status", "", string(stripe.SubscriptionStatusActive))

	var results []models.InstallmentAction
	subIter := c.api.Subscriptions.List(subParams)
	for subIter.Next() {
		sub := subIter.Subscription()

		paid, _, err := c.paidInvoices(ctx, sub.ID)
		if err != nil {
			c.log.Error("listing invoices failed", "subscription_id", sub.ID, "error", err)
			results = append(results, models.InstallmentAction{
				SubscriptionID: sub.ID,
				Action:         "error",
				Error:          err.Error(),
			})
			continue
		}

		action := InstallmentAction(sub, paid, c.cfg.InstallmentLimit)
		if action.Action == "canceled" {
			if err := c.cancelAtPeriodEnd(ctx, sub); err != nil {
				c.log.Error("canceling subscription failed", "subscription_id", sub.ID, "error", err)
				results = append(results, models.InstallmentAction{
					SubscriptionID: sub.ID,
					Action:         "error",
					Error:          err.Error(),
				})
				continue
			}
			c.log.Info("installment subscription canceled", "subscription_id", sub.ID, "payments_made", paid)
		}
		results = append(results, action)
	}
	if err := subIter.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// paidInvoices counts paid invoices for a subscription and sums the amounts.
func (c *Client) paidInvoices(ctx context.Context, subscriptionID string) (int, int64, error) {
	invParams := &stripe.InvoiceListParams{}
	invParams.Context = ctx
	invParams.Limit = stripe.Int64(10)
	invParams.Filters.AddFilter("subscription", "", subscriptionID)
	invParams.Filters.AddFilter("status", "", string(stripe.InvoiceStatusPaid))

	paid := 0
	var total int64
	invIter := c.api.Invoices.List(invParams)
	for invIter.Next() {
		inv := invIter.Invoice()
		if inv.Status != stripe.InvoiceStatusPaid {
			continue
		}
		paid++
		total += inv.AmountPaid
	}
	if err := invIter.Err(); err != nil {
		return 0, 0, err
	}
	return paid, total, nil
}

// cancelAtPeriodEnd flags the subscription for cancellation and stamps audit
// metadata on it.
func (c *Client) cancelAtPeriodEnd(ctx context.Context, sub *stripe.Subscription) error {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata("auto_canceled_after_installments", "true")
	params.AddMetadata("canceled_at", time.Now().UTC().Format(time.RFC3339))

	_, err := c.api.Subscriptions.Update(sub.ID, params)
	return err
}
