package response

import (
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/utils"

	"github.com/shopspring/decimal"
)

type CreditMemoLineResponse struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Tax         decimal.Decimal `json:"tax"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

type CreditMemoResponse struct {
	ID          string                   `json:"id"`
	RefundID    string                   `json:"refund_id"`
	BookingID   string                   `json:"booking_id"`
	MemoNumber  string                   `json:"memo_number"`
	Currency    string                   `json:"currency"`
	Subtotal    decimal.Decimal          `json:"subtotal"`
	Tax         decimal.Decimal          `json:"tax"`
	Total       decimal.Decimal          `json:"total"`
	Status      entity.CreditMemoStatus  `json:"status"`
	DocumentURL string                   `json:"document_url,omitempty"`
	IssuedAt    *time.Time               `json:"issued_at,omitempty"`
	Lines       []CreditMemoLineResponse `json:"lines"`
	CreatedAt   time.Time                `json:"created_at"`
}

func CreditMemoToResponse(m *entity.CreditMemo, documentURL string) CreditMemoResponse {
	lines := make([]CreditMemoLineResponse, 0, len(m.Lines))
	for _, line := range m.Lines {
		lines = append(lines, CreditMemoLineResponse{
			Description: line.Description,
			Amount:      utils.FromCents(line.AmountCents),
			Tax:         utils.FromCents(line.TaxCents),
			TaxRate:     line.TaxRate,
		})
	}

	return CreditMemoResponse{
		ID:          m.ID.String(),
		RefundID:    m.RefundID.String(),
		BookingID:   m.BookingID.String(),
		MemoNumber:  m.MemoNumber,
		Currency:    m.Currency,
		Subtotal:    utils.FromCents(m.SubtotalCents),
		Tax:         utils.FromCents(m.TaxCents),
		Total:       utils.FromCents(m.TotalCents),
		Status:      m.Status,
		DocumentURL: documentURL,
		IssuedAt:    m.IssuedAt,
		Lines:       lines,
		CreatedAt:   m.CreatedAt,
	}
}
