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

type PaymentRepository interface {
	// Record stores the payment; a completed payment also raises the booking's paid amount.
	Record(ctx context.Context, payment *entity.Payment) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error)
	FindLatestCompleted(ctx context.Context, bookingID uuid.UUID, provider entity.PaymentProvider) (*entity.Payment, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, booking_id, provider, transaction_ref, amount_cents, currency, status, paid_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.Provider,
		&p.TransactionRef,
		&p.AmountCents,
		&p.Currency,
		&p.Status,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Record(ctx context.Context, payment *entity.Payment) error {
	err := database.WithTx(ctx, r.db, func(q database.Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO payments (id, booking_id, provider, transaction_ref, amount_cents, currency, status,
			                      paid_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			payment.ID,
			payment.BookingID,
			payment.Provider,
			payment.TransactionRef,
			payment.AmountCents,
			payment.Currency,
			payment.Status,
			payment.PaidAt,
			payment.CreatedAt,
			payment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		if payment.Status != entity.PaymentStatusCompleted {
			return nil
		}

		_, err = q.Exec(ctx, `
			UPDATE bookings
			SET amount_paid_cents = amount_paid_cents + $2,
			    status = CASE WHEN status = 'pending' THEN 'confirmed' ELSE status END,
			    updated_at = $3
			WHERE id = $1`,
			payment.BookingID, payment.AmountCents, payment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("apply payment to booking: %w", err)
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to record payment",
			zap.Error(err),
			zap.String("booking_id", payment.BookingID.String()),
		)
		return err
	}
	return nil
}

func (r *paymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find payments for booking %s: %w", bookingID, err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *paymentRepository) FindLatestCompleted(ctx context.Context, bookingID uuid.UUID, provider entity.PaymentProvider) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1 AND provider = $2 AND status = 'completed'
		ORDER BY paid_at DESC NULLS LAST, created_at DESC
		LIMIT 1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, bookingID, provider))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find completed %s payment for booking %s: %w", provider, bookingID, err)
	}
	return payment, nil
}
