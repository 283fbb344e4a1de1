package repository

import (
	"context"
	"errors"
	"fmt"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CreditMemoRepository interface {
	// Create writes the memo and its lines using q, so it can join a refund transition.
	Create(ctx context.Context, q database.Querier, memo *entity.CreditMemo) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CreditMemo, error)
	FindByRefundID(ctx context.Context, refundID uuid.UUID) (*entity.CreditMemo, error)
}

type creditMemoRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCreditMemoRepository(db database.PgxIface, log *zap.Logger) CreditMemoRepository {
	return &creditMemoRepository{
		db:  db,
		log: log.With(zap.String("repository", "credit_memo")),
	}
}

func (r *creditMemoRepository) Create(ctx context.Context, q database.Querier, memo *entity.CreditMemo) error {
	if q == nil {
		q = r.db
	}

	_, err := q.Exec(ctx, `
		INSERT INTO credit_memos (id, refund_id, booking_id, memo_number, currency, subtotal_cents, tax_cents,
		                          total_cents, status, document_key, issued_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		memo.ID,
		memo.RefundID,
		memo.BookingID,
		memo.MemoNumber,
		memo.Currency,
		memo.SubtotalCents,
		memo.TaxCents,
		memo.TotalCents,
		memo.Status,
		memo.DocumentKey,
		memo.IssuedAt,
		memo.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create credit memo",
			zap.Error(err),
			zap.String("memo_number", memo.MemoNumber),
		)
		return fmt.Errorf("insert credit memo %s: %w", memo.MemoNumber, err)
	}

	for _, line := range memo.Lines {
		_, err := q.Exec(ctx, `
			INSERT INTO credit_memo_lines (id, credit_memo_id, description, amount_cents, tax_cents, tax_rate)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			line.ID, memo.ID, line.Description, line.AmountCents, line.TaxCents, line.TaxRate,
		)
		if err != nil {
			return fmt.Errorf("insert credit memo line: %w", err)
		}
	}
	return nil
}

func (r *creditMemoRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CreditMemo, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *creditMemoRepository) FindByRefundID(ctx context.Context, refundID uuid.UUID) (*entity.CreditMemo, error) {
	return r.findOne(ctx, `WHERE refund_id = $1`, refundID)
}

func (r *creditMemoRepository) findOne(ctx context.Context, where string, id uuid.UUID) (*entity.CreditMemo, error) {
	query := `
		SELECT id, refund_id, booking_id, memo_number, currency, subtotal_cents, tax_cents, total_cents,
		       status, document_key, issued_at, created_at
		FROM credit_memos ` + where

	var m entity.CreditMemo
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.RefundID,
		&m.BookingID,
		&m.MemoNumber,
		&m.Currency,
		&m.SubtotalCents,
		&m.TaxCents,
		&m.TotalCents,
		&m.Status,
		&m.DocumentKey,
		&m.IssuedAt,
		&m.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find credit memo %s: %w", id, err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, credit_memo_id, description, amount_cents, tax_cents, tax_rate
		FROM credit_memo_lines
		WHERE credit_memo_id = $1
		ORDER BY id`, m.ID)
	if err != nil {
		return nil, fmt.Errorf("find credit memo lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line entity.CreditMemoLine
		if err := rows.Scan(&line.ID, &line.CreditMemoID, &line.Description, &line.AmountCents, &line.TaxCents, &line.TaxRate); err != nil {
			return nil, fmt.Errorf("scan credit memo line: %w", err)
		}
		m.Lines = append(m.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &m, nil
}
