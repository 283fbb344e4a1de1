package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/pkg/memo"
	"rental-booking/pkg/storage"
	"rental-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreditMemoBuilder issues the memo that settles a credit_memo refund. The memo
// is returned unsaved so it can be written in the same transaction that
// completes the refund.
type CreditMemoBuilder struct {
	repo    *repository.Repository
	storage storage.Storage
	now     func() time.Time
	log     *zap.Logger
}

func NewCreditMemoBuilder(repo *repository.Repository, store storage.Storage, log *zap.Logger) *CreditMemoBuilder {
	return &CreditMemoBuilder{
		repo:    repo,
		storage: store,
		now:     time.Now,
		log:     log.With(zap.String("service", "credit_memo")),
	}
}

func (b *CreditMemoBuilder) Build(ctx context.Context, refund *entity.RefundRequest, booking *entity.Booking) (*entity.CreditMemo, error) {
	items, err := b.repo.Booking.FindLineItems(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("load invoice lines: %w", err)
	}

	now := b.now().UTC()
	memoID := uuid.New()
	lines := scaleLines(items, refund.SettlementCents(), booking.Reference)

	cm := &entity.CreditMemo{
		BaseSimple: entity.BaseSimple{ID: memoID, CreatedAt: now},
		RefundID:   refund.ID,
		BookingID:  booking.ID,
		MemoNumber: utils.GenerateMemoNumber(now),
		Currency:   refund.Currency,
		Status:     entity.CreditMemoDraft,
	}
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].CreditMemoID = memoID
		cm.SubtotalCents += lines[i].AmountCents
		cm.TaxCents += lines[i].TaxCents
	}
	cm.TotalCents = cm.SubtotalCents + cm.TaxCents
	cm.Lines = lines

	doc, err := b.document(ctx, cm, booking, now)
	if err != nil {
		return nil, err
	}

	html, err := memo.Render(doc)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("credit-memos/%s/%s.html", booking.ID, cm.MemoNumber)
	if err := b.storage.Upload(ctx, key, bytes.NewReader(html), int64(len(html)), "text/html; charset=utf-8"); err != nil {
		return nil, err
	}

	cm.DocumentKey = &key
	cm.Status = entity.CreditMemoIssued
	cm.IssuedAt = &now

	b.log.Info("Credit memo issued",
		zap.String("memo_number", cm.MemoNumber),
		zap.String("refund_id", refund.ID.String()),
		zap.Int64("total_cents", cm.TotalCents),
	)

	return cm, nil
}

func (b *CreditMemoBuilder) document(ctx context.Context, cm *entity.CreditMemo, booking *entity.Booking, now time.Time) (memo.Document, error) {
	doc := memo.Document{
		Number:           cm.MemoNumber,
		IssuedAt:         now,
		BookingReference: booking.Reference,
		Currency:         cm.Currency,
		SubtotalCents:    cm.SubtotalCents,
		TaxCents:         cm.TaxCents,
		TotalCents:       cm.TotalCents,
	}
	for _, line := range cm.Lines {
		doc.Lines = append(doc.Lines, memo.Line{
			Description: line.Description,
			AmountCents: line.AmountCents,
			TaxCents:    line.TaxCents,
			TaxRate:     line.TaxRate,
		})
	}

	property, err := b.repo.Property.FindByID(ctx, booking.PropertyID)
	if err != nil {
		return doc, fmt.Errorf("load property: %w", err)
	}
	if property != nil {
		doc.PropertyName = property.Name
	}

	guest, err := b.repo.User.FindByID(ctx, booking.GuestID)
	if err != nil {
		return doc, fmt.Errorf("load guest: %w", err)
	}
	if guest != nil {
		doc.GuestName = guest.Username
	}

	return doc, nil
}

// scaleLines mirrors the invoice lines scaled so that amount plus tax sums to
// exactly target. Rounding leftovers go to the last line's amount.
func scaleLines(items []*entity.BookingLineItem, target int64, bookingRef string) []entity.CreditMemoLine {
	var gross int64
	for _, item := range items {
		gross += item.AmountCents + item.TaxCents
	}

	if len(items) == 0 || gross <= 0 {
		return []entity.CreditMemoLine{{
			Description: "Refund for booking " + bookingRef,
			AmountCents: target,
			TaxRate:     decimal.Zero,
		}}
	}

	lines := make([]entity.CreditMemoLine, 0, len(items))
	var allocated int64
	for _, item := range items {
		amount := item.AmountCents * target / gross
		tax := item.TaxCents * target / gross
		allocated += amount + tax

		lines = append(lines, entity.CreditMemoLine{
			Description: item.Description,
			AmountCents: amount,
			TaxCents:    tax,
			TaxRate:     item.TaxRate,
		})
	}
	lines[len(lines)-1].AmountCents += target - allocated

	return lines
}
