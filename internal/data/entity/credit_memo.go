package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreditMemoStatus string

const (
	CreditMemoDraft  CreditMemoStatus = "draft"
	CreditMemoIssued CreditMemoStatus = "issued"
	CreditMemoVoid   CreditMemoStatus = "void"
)

type CreditMemo struct {
	BaseSimple
	RefundID      uuid.UUID        `db:"refund_id"`
	BookingID     uuid.UUID        `db:"booking_id"`
	MemoNumber    string           `db:"memo_number"`
	Currency      string           `db:"currency"`
	SubtotalCents int64            `db:"subtotal_cents"`
	TaxCents      int64            `db:"tax_cents"`
	TotalCents    int64            `db:"total_cents"`
	Status        CreditMemoStatus `db:"status"`
	DocumentKey   *string          `db:"document_key"`
	IssuedAt      *time.Time       `db:"issued_at"`

	Lines []CreditMemoLine `db:"-"`
}

type CreditMemoLine struct {
	ID           uuid.UUID       `db:"id"`
	CreditMemoID uuid.UUID       `db:"credit_memo_id"`
	Description  string          `db:"description"`
	AmountCents  int64           `db:"amount_cents"`
	TaxCents     int64           `db:"tax_cents"`
	TaxRate      decimal.Decimal `db:"tax_rate"`
}
