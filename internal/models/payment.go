package models

import "time"

// Payment modes accepted by POST /create-payment.
const (
	PaymentModeOneTime     = "one_time"
	PaymentModeInstallment = "installment"
)

// Payment method labels shown in the dashboard. Portuguese labels are kept
// verbatim because the legacy payment_logs rows already use them.
const (
	MethodAVista    = "à vista"
	MethodParcelado = "parcelado"
	MethodPix       = "PIX"
)

// PaymentLog is the legacy per-payment-attempt record. A later log-payment
// call may set pagou_pix on the logical record; the two writes are linked
// only by matching name/email, not by a foreign key (known weak point).
type PaymentLog struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Telefone      string    `json:"telefone,omitempty"`
	CPF           string    `json:"cpf,omitempty"`
	PaymentMethod string    `json:"payment_method"`
	Aceitou       bool      `json:"aceitou"`
	PagouPix      *bool     `json:"pagou_pix,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// LogPaymentRequest is the POST /log-payment payload.
type LogPaymentRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Telefone      string `json:"telefone,omitempty"`
	CPF           string `json:"cpf,omitempty"`
	PaymentMethod string `json:"payment_method"`
	PagouPix      *bool  `json:"pagou_pix,omitempty"`
}

// LogPaymentResponse is returned by POST /log-payment.
type LogPaymentResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

// CreatePaymentRequest is the POST /create-payment payload.
// payment_mode selects the Stripe price and checkout mode; payment_method is
// advisory ("card" or "pix") — the PIX rail is confirmed out-of-band via
// log-payment, so checkout sessions are always card-based.
type CreatePaymentRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CPF           string `json:"cpf,omitempty"`
	Telefone      string `json:"telefone,omitempty"`
	PaymentMode   string `json:"payment_mode"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// CreatePaymentResponse is returned by POST /create-payment. URL is the
// provider-hosted checkout page the browser should redirect to.
type CreatePaymentResponse struct {
	URL string `json:"url"`
}

// SubscriptionStatus summarizes an installment plan's payment progress.
// Field names mirror the JSON the admin dashboard already consumes.
type SubscriptionStatus struct {
	HasSubscription bool                `json:"hasSubscription"`
	Message         string              `json:"message,omitempty"`
	Subscription    *SubscriptionDetail `json:"subscription,omitempty"`
}

// SubscriptionDetail is the per-subscription progress block of
// SubscriptionStatus.
type SubscriptionDetail struct {
	ID                 string            `json:"id"`
	Status             string            `json:"status"`
	CurrentPeriodStart time.Time         `json:"current_period_start"`
	CurrentPeriodEnd   time.Time         `json:"current_period_end"`
	CancelAtPeriodEnd  bool              `json:"cancel_at_period_end"`
	PaymentsMade       int               `json:"payments_made"`
	PaymentsRemaining  int               `json:"payments_remaining"`
	TotalAmountPaid    int64             `json:"total_amount_paid"`
	NextPaymentDate    *time.Time        `json:"next_payment_date"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// InstallmentAction is one entry of the manage-installments report.
type InstallmentAction struct {
	SubscriptionID    string `json:"subscription_id"`
	Action            string `json:"action"` // "canceled", "active" or "error"
	PaymentsMade      int    `json:"payments_made,omitempty"`
	PaymentsRemaining int    `json:"payments_remaining,omitempty"`
	CustomerEmail     string `json:"customer_email,omitempty"`
	Error             string `json:"error,omitempty"`
}

// ManageInstallmentsResponse is returned by POST /manage-installments.
type ManageInstallmentsResponse struct {
	Success   bool                `json:"success"`
	Processed int                 `json:"processed"`
	Results   []InstallmentAction `json:"results"`
}
