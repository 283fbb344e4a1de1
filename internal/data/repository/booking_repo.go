package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrBookingLocked is returned by booking mutations that raced with a refund request.
var ErrBookingLocked = errors.New("booking has an active refund request")

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking, lines []*entity.BookingLineItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error)
	FindLineItems(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingLineItem, error)

	// Mutations below refuse to touch a booking with an active refund.
	UpdateDates(ctx context.Context, id uuid.UUID, checkIn, checkOut, at time.Time) error
	UpdatePrice(ctx context.Context, id uuid.UUID, totalPriceCents int64, at time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, at time.Time) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, reference, property_id, guest_id, check_in, check_out, guests,
	total_price_cents, amount_paid_cents, total_refunded_cents, currency, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.PropertyID,
		&b.GuestID,
		&b.CheckIn,
		&b.CheckOut,
		&b.Guests,
		&b.TotalPriceCents,
		&b.AmountPaidCents,
		&b.TotalRefundedCents,
		&b.Currency,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking, lines []*entity.BookingLineItem) error {
	err := database.WithTx(ctx, r.db, func(q database.Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO bookings (id, reference, property_id, guest_id, check_in, check_out, guests,
			                      total_price_cents, amount_paid_cents, total_refunded_cents, currency, status,
			                      created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			booking.ID,
			booking.Reference,
			booking.PropertyID,
			booking.GuestID,
			booking.CheckIn,
			booking.CheckOut,
			booking.Guests,
			booking.TotalPriceCents,
			booking.AmountPaidCents,
			booking.TotalRefundedCents,
			booking.Currency,
			booking.Status,
			booking.CreatedAt,
			booking.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		for _, line := range lines {
			_, err := q.Exec(ctx, `
				INSERT INTO booking_line_items (id, booking_id, description, amount_cents, tax_cents, tax_rate, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				line.ID, booking.ID, line.Description, line.AmountCents, line.TaxCents, line.TaxRate, line.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert booking line item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("reference", booking.Reference),
		)
		return err
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}
	return booking, nil
}

func (r *bookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE guest_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, guestID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("find bookings by guest %s: %w", guestID, err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE guest_id = $1`, guestID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count bookings by guest %s: %w", guestID, err)
	}
	return total, nil
}

func (r *bookingRepository) FindLineItems(ctx context.Context, bookingID uuid.UUID) ([]*entity.BookingLineItem, error) {
	query := `
		SELECT id, booking_id, description, amount_cents, tax_cents, tax_rate, created_at
		FROM booking_line_items
		WHERE booking_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find line items for booking %s: %w", bookingID, err)
	}
	defer rows.Close()

	var items []*entity.BookingLineItem
	for rows.Next() {
		var item entity.BookingLineItem
		if err := rows.Scan(
			&item.ID,
			&item.BookingID,
			&item.Description,
			&item.AmountCents,
			&item.TaxCents,
			&item.TaxRate,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// unlockedGuard keeps the lock check and the write in one statement.
const unlockedGuard = `
	AND NOT EXISTS (
		SELECT 1 FROM refund_requests rr
		WHERE rr.booking_id = bookings.id
		  AND rr.status IN ('requested', 'under_review', 'approved', 'processing')
	)`

func (r *bookingRepository) UpdateDates(ctx context.Context, id uuid.UUID, checkIn, checkOut, at time.Time) error {
	query := `UPDATE bookings SET check_in = $2, check_out = $3, updated_at = $4 WHERE id = $1` + unlockedGuard
	return r.guardedUpdate(ctx, "update booking dates", query, id, checkIn, checkOut, at)
}

func (r *bookingRepository) UpdatePrice(ctx context.Context, id uuid.UUID, totalPriceCents int64, at time.Time) error {
	query := `UPDATE bookings SET total_price_cents = $2, updated_at = $3 WHERE id = $1` + unlockedGuard
	return r.guardedUpdate(ctx, "update booking price", query, id, totalPriceCents, at)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.BookingStatus, at time.Time) error {
	query := `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1` + unlockedGuard
	return r.guardedUpdate(ctx, "update booking status", query, id, status, at)
}

func (r *bookingRepository) guardedUpdate(ctx context.Context, op, query string, id uuid.UUID, args ...any) error {
	result, err := r.db.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		r.log.Error("Failed to "+op, zap.Error(err), zap.String("booking_id", id.String()))
		return fmt.Errorf("%s %s: %w", op, id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrBookingLocked
	}
	return nil
}
