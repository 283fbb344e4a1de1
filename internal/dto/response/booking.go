package response

import (
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/utils"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type BookingResponse struct {
	ID            string               `json:"id"`
	Reference     string               `json:"reference"`
	PropertyID    string               `json:"property_id"`
	GuestID       string               `json:"guest_id"`
	CheckIn       string               `json:"check_in"`
	CheckOut      string               `json:"check_out"`
	Guests        int                  `json:"guests"`
	TotalPrice    decimal.Decimal      `json:"total_price"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	TotalRefunded decimal.Decimal      `json:"total_refunded"`
	Currency      string               `json:"currency"`
	Status        entity.BookingStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type LineItemResponse struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Tax         decimal.Decimal `json:"tax"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type PaymentResponse struct {
	ID             string                 `json:"id"`
	BookingID      string                 `json:"booking_id"`
	Provider       entity.PaymentProvider `json:"provider"`
	TransactionRef *string                `json:"transaction_ref,omitempty"`
	Amount         decimal.Decimal        `json:"amount"`
	Currency       string                 `json:"currency"`
	Status         entity.PaymentStatus   `json:"status"`
	PaidAt         *time.Time             `json:"paid_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// BookingDetailResponse carries the refunds needed to render the lock state.
type BookingDetailResponse struct {
	BookingResponse
	LineItems       []LineItemResponse `json:"line_items"`
	Payments        []PaymentResponse  `json:"payments"`
	Refunds         []RefundResponse   `json:"refunds"`
	HasActiveRefund bool               `json:"has_active_refund"`
}

// Helper converters
func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID.String(),
		Reference:     b.Reference,
		PropertyID:    b.PropertyID.String(),
		GuestID:       b.GuestID.String(),
		CheckIn:       b.CheckIn.Format(dateLayout),
		CheckOut:      b.CheckOut.Format(dateLayout),
		Guests:        b.Guests,
		TotalPrice:    utils.FromCents(b.TotalPriceCents),
		AmountPaid:    utils.FromCents(b.AmountPaidCents),
		TotalRefunded: utils.FromCents(b.TotalRefundedCents),
		Currency:      b.Currency,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func LineItemToResponse(item *entity.BookingLineItem) LineItemResponse {
	return LineItemResponse{
		Description: item.Description,
		Amount:      utils.FromCents(item.AmountCents),
		Tax:         utils.FromCents(item.TaxCents),
		TaxRate:     item.TaxRate,
	}
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID.String(),
		BookingID:      p.BookingID.String(),
		Provider:       p.Provider,
		TransactionRef: p.TransactionRef,
		Amount:         utils.FromCents(p.AmountCents),
		Currency:       p.Currency,
		Status:         p.Status,
		PaidAt:         p.PaidAt,
		CreatedAt:      p.CreatedAt,
	}
}
