package models

import "time"

// CheckoutEvent is one row of the append-only funnel event log.
// Rows are never updated or deleted; duplicate events from retried client
// calls are accepted as separate rows (no idempotency on this path).
type CheckoutEvent struct {
	ID                string                 `json:"id"`
	SessionID         string                 `json:"session_id"`
	EventType         string                 `json:"event_type"`
	UserName          string                 `json:"user_name,omitempty"`
	UserEmail         string                 `json:"user_email,omitempty"`
	PaymentMethod     string                 `json:"payment_method,omitempty"`
	CheckoutSessionID string                 `json:"checkout_session_id,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
}

// Well-known event types. The column is an open string enum: the client may
// emit UI-interaction types not listed here and they are stored as-is.
const (
	EventPageLoaded            = "page_loaded"
	EventFormSubmitted         = "form_submitted"
	EventPaymentModalOpened    = "payment_modal_opened"
	EventPaymentMethodSelected = "payment_method_selected"
	EventCheckoutStarted       = "checkout_started"
	EventCheckoutSessionMade   = "checkout_session_created"
	EventPaymentCompleted      = "payment_completed"
	EventInstallmentCompleted  = "installment_payment_completed"
	EventCheckoutExpired       = "checkout_expired"
	EventPixModalOpened        = "pix_modal_opened"
	EventPixCodeCopied         = "pix_code_copied"
	EventPixPaymentConfirmed   = "pix_payment_confirmed"
	EventPixModalClosed        = "pix_modal_closed"
)

// TrackEventRequest is the POST /track-checkout-event payload.
// session_id is optional; one is generated server-side when omitted.
type TrackEventRequest struct {
	SessionID         string                 `json:"session_id,omitempty"`
	EventType         string                 `json:"event_type"`
	UserName          string                 `json:"user_name,omitempty"`
	UserEmail         string                 `json:"user_email,omitempty"`
	PaymentMethod     string                 `json:"payment_method,omitempty"`
	CheckoutSessionID string                 `json:"checkout_session_id,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

// TrackEventResponse is returned by POST /track-checkout-event.
type TrackEventResponse struct {
	Success   bool   `json:"success"`
	EventID   string `json:"event_id"`
	SessionID string `json:"session_id"`
}
