package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking amounts are minor currency units.
type Booking struct {
	BaseNoDelete
	Reference          string        `db:"reference"`
	PropertyID         uuid.UUID     `db:"property_id"`
	GuestID            uuid.UUID     `db:"guest_id"`
	CheckIn            time.Time     `db:"check_in"`
	CheckOut           time.Time     `db:"check_out"`
	Guests             int           `db:"guests"`
	TotalPriceCents    int64         `db:"total_price_cents"`
	AmountPaidCents    int64         `db:"amount_paid_cents"`
	TotalRefundedCents int64         `db:"total_refunded_cents"`
	Currency           string        `db:"currency"`
	Status             BookingStatus `db:"status"`
}

// RefundableCents is what is still available to refund.
func (b *Booking) RefundableCents() int64 {
	if available := b.AmountPaidCents - b.TotalRefundedCents; available > 0 {
		return available
	}
	return 0
}

type BookingLineItem struct {
	BaseSimple
	BookingID   uuid.UUID       `db:"booking_id"`
	Description string          `db:"description"`
	AmountCents int64           `db:"amount_cents"`
	TaxCents    int64           `db:"tax_cents"`
	TaxRate     decimal.Decimal `db:"tax_rate"`
}
