package request

import "github.com/shopspring/decimal"

type CreateBookingRequest struct {
	PropertyID string            `json:"property_id" validate:"required,uuid"`
	CheckIn    string            `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string            `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests     int               `json:"guests" validate:"required,min=1,max=50"`
	LineItems  []LineItemRequest `json:"line_items" validate:"required,min=1,dive"`
}

// LineItemRequest is one invoice line; Amount excludes tax.
type LineItemRequest struct {
	Description string          `json:"description" validate:"required,max=200"`
	Amount      decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	TaxRate     decimal.Decimal `json:"tax_rate" validate:"gte=0,lte=1"`
}

type RecordPaymentRequest struct {
	Provider       string          `json:"provider" validate:"required,oneof=stripe paypal manual eft"`
	TransactionRef *string         `json:"transaction_ref,omitempty" validate:"omitempty,max=255"`
	Amount         decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Status         string          `json:"status,omitempty" validate:"omitempty,oneof=pending completed failed"`
}

type UpdateBookingDatesRequest struct {
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

type UpdateBookingPriceRequest struct {
	TotalPrice decimal.Decimal `json:"total_price" validate:"decimal_gt0"`
}
