package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type PaymentProvider string

const (
	ProviderStripe PaymentProvider = "stripe"
	ProviderPayPal PaymentProvider = "paypal"
	ProviderManual PaymentProvider = "manual"
	ProviderEFT    PaymentProvider = "eft"
)

// Payment.TransactionRef is the PaymentIntent id for Stripe and the capture id for PayPal.
type Payment struct {
	BaseNoDelete
	BookingID      uuid.UUID       `db:"booking_id"`
	Provider       PaymentProvider `db:"provider"`
	TransactionRef *string         `db:"transaction_ref"`
	AmountCents    int64           `db:"amount_cents"`
	Currency       string          `db:"currency"`
	Status         PaymentStatus   `db:"status"`
	PaidAt         *time.Time      `db:"paid_at"`
}
