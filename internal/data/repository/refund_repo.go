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

const activeRefundIndex = "refund_requests_one_active_per_booking"

var (
	ErrActiveRefundExists = errors.New("booking already has an active refund request")
	// ErrStaleRefundStatus means the row was no longer in an expected source status.
	ErrStaleRefundStatus = errors.New("refund status changed")
)

// RefundChanges lists the columns a transition writes. Nil fields are left untouched;
// InternalNotes is appended to the existing notes.
type RefundChanges struct {
	ApprovedAmountCents *int64
	RefundMethod        *entity.RefundMethod
	CustomerNotes       *string
	InternalNotes       *string
	ProviderRef         *string
	CompletionReference *string
	ReviewedAt          *time.Time
	ReviewedBy          *uuid.UUID
	ApprovedAt          *time.Time
	ApprovedBy          *uuid.UUID
	RejectedAt          *time.Time
	RejectedBy          *uuid.UUID
	ProcessedAt         *time.Time
	ProcessedBy         *uuid.UUID
	CompletedAt         *time.Time
}

type RefundTransition struct {
	RefundID uuid.UUID
	From     []entity.RefundStatus
	To       entity.RefundStatus
	At       time.Time
	Changes  RefundChanges
	History  *entity.RefundStatusHistory

	// SettledCents is added to the booking's refunded total in the same transaction.
	SettledCents int64
	// Within runs after the status update and before commit.
	Within func(ctx context.Context, q database.Querier, refund *entity.RefundRequest) error
}

type RefundFilter struct {
	Status *entity.RefundStatus
	Limit  int
	Offset int
}

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.RefundRequest, history *entity.RefundStatusHistory) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.RefundRequest, error)
	FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.RefundRequest, error)
	CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, filter RefundFilter) ([]*entity.RefundRequest, error)
	Count(ctx context.Context, status *entity.RefundStatus) (int64, error)
	HasActive(ctx context.Context, bookingID uuid.UUID) (bool, error)
	Transition(ctx context.Context, t RefundTransition) (*entity.RefundRequest, error)
	History(ctx context.Context, refundID uuid.UUID) ([]*entity.RefundStatusHistory, error)
}

type refundRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRefundRepository(db database.PgxIface, log *zap.Logger) RefundRepository {
	return &refundRepository{
		db:  db,
		log: log.With(zap.String("repository", "refund")),
	}
}

const refundColumns = `id, booking_id, guest_id, requested_amount_cents, approved_amount_cents, currency,
	status, reason, customer_notes, internal_notes, refund_method, provider_ref, completion_reference,
	reviewed_at, reviewed_by, approved_at, approved_by, rejected_at, rejected_by,
	processed_at, processed_by, completed_at, created_at, updated_at`

func scanRefund(row pgx.Row) (*entity.RefundRequest, error) {
	var r entity.RefundRequest
	err := row.Scan(
		&r.ID,
		&r.BookingID,
		&r.GuestID,
		&r.RequestedAmountCents,
		&r.ApprovedAmountCents,
		&r.Currency,
		&r.Status,
		&r.Reason,
		&r.CustomerNotes,
		&r.InternalNotes,
		&r.RefundMethod,
		&r.ProviderRef,
		&r.CompletionReference,
		&r.ReviewedAt,
		&r.ReviewedBy,
		&r.ApprovedAt,
		&r.ApprovedBy,
		&r.RejectedAt,
		&r.RejectedBy,
		&r.ProcessedAt,
		&r.ProcessedBy,
		&r.CompletedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (rr *refundRepository) collect(rows pgx.Rows) ([]*entity.RefundRequest, error) {
	defer rows.Close()

	var refunds []*entity.RefundRequest
	for rows.Next() {
		refund, err := scanRefund(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refund: %w", err)
		}
		refunds = append(refunds, refund)
	}
	return refunds, rows.Err()
}

// Create inserts the request and its first history row. A second active request
// for the same booking trips the partial unique index.
func (rr *refundRepository) Create(ctx context.Context, refund *entity.RefundRequest, history *entity.RefundStatusHistory) error {
	err := database.WithTx(ctx, rr.db, func(q database.Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO refund_requests (id, booking_id, guest_id, requested_amount_cents, currency, status,
			                             reason, customer_notes, refund_method, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			refund.ID,
			refund.BookingID,
			refund.GuestID,
			refund.RequestedAmountCents,
			refund.Currency,
			refund.Status,
			refund.Reason,
			refund.CustomerNotes,
			refund.RefundMethod,
			refund.CreatedAt,
			refund.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert refund: %w", err)
		}
		return insertHistory(ctx, q, history)
	})

	if database.IsUniqueViolation(err, activeRefundIndex) {
		return ErrActiveRefundExists
	}
	if err != nil {
		rr.log.Error("Failed to create refund",
			zap.Error(err),
			zap.String("booking_id", refund.BookingID.String()),
		)
		return err
	}
	return nil
}

func (rr *refundRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = $1`

	refund, err := scanRefund(rr.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find refund by ID %s: %w", id, err)
	}
	return refund, nil
}

func (rr *refundRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*entity.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE booking_id = $1 ORDER BY created_at DESC`

	rows, err := rr.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find refunds for booking %s: %w", bookingID, err)
	}
	return rr.collect(rows)
}

func (rr *refundRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*entity.RefundRequest, error) {
	query := `SELECT ` + refundColumns + `
		FROM refund_requests
		WHERE guest_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := rr.db.Query(ctx, query, guestID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("find refunds for guest %s: %w", guestID, err)
	}
	return rr.collect(rows)
}

func (rr *refundRepository) CountByGuestID(ctx context.Context, guestID uuid.UUID) (int64, error) {
	var total int64
	if err := rr.db.QueryRow(ctx, `SELECT COUNT(*) FROM refund_requests WHERE guest_id = $1`, guestID).Scan(&total); err != nil {
		return 0, fmt.Errorf("count refunds for guest %s: %w", guestID, err)
	}
	return total, nil
}

// FindAll lists the review queue oldest first.
func (rr *refundRepository) FindAll(ctx context.Context, filter RefundFilter) ([]*entity.RefundRequest, error) {
	query := `SELECT ` + refundColumns + `
		FROM refund_requests
		WHERE ($1::text IS NULL OR status = $1::text)
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := rr.db.Query(ctx, query, statusArg(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("find refunds: %w", err)
	}
	return rr.collect(rows)
}

func (rr *refundRepository) Count(ctx context.Context, status *entity.RefundStatus) (int64, error) {
	var total int64
	err := rr.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM refund_requests WHERE ($1::text IS NULL OR status = $1::text)`,
		statusArg(status),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count refunds: %w", err)
	}
	return total, nil
}

func (rr *refundRepository) HasActive(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM refund_requests WHERE booking_id = $1 AND status = ANY($2))`

	var exists bool
	if err := rr.db.QueryRow(ctx, query, bookingID, statusStrings(entity.ActiveRefundStatuses)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active refund for booking %s: %w", bookingID, err)
	}
	return exists, nil
}

// Transition moves the request only if it is still in one of t.From. Zero matched
// rows yields ErrStaleRefundStatus and nothing is written.
func (rr *refundRepository) Transition(ctx context.Context, t RefundTransition) (*entity.RefundRequest, error) {
	var updated *entity.RefundRequest

	err := database.WithTx(ctx, rr.db, func(q database.Querier) error {
		c := t.Changes
		row := q.QueryRow(ctx, `
			UPDATE refund_requests SET
				status = $3,
				approved_amount_cents = COALESCE($4, approved_amount_cents),
				refund_method = COALESCE($5, refund_method),
				customer_notes = COALESCE($6, customer_notes),
				internal_notes = CASE
					WHEN $7::text IS NULL THEN internal_notes
					WHEN internal_notes IS NULL OR internal_notes = '' THEN $7::text
					ELSE internal_notes || E'\n' || $7::text
				END,
				provider_ref = COALESCE($8, provider_ref),
				completion_reference = COALESCE($9, completion_reference),
				reviewed_at = COALESCE($10, reviewed_at),
				reviewed_by = COALESCE($11, reviewed_by),
				approved_at = COALESCE($12, approved_at),
				approved_by = COALESCE($13, approved_by),
				rejected_at = COALESCE($14, rejected_at),
				rejected_by = COALESCE($15, rejected_by),
				processed_at = COALESCE($16, processed_at),
				processed_by = COALESCE($17, processed_by),
				completed_at = COALESCE($18, completed_at),
				updated_at = $19
			WHERE id = $1 AND status = ANY($2)
			RETURNING `+refundColumns,
			t.RefundID,
			statusStrings(t.From),
			string(t.To),
			c.ApprovedAmountCents,
			methodArg(c.RefundMethod),
			c.CustomerNotes,
			c.InternalNotes,
			c.ProviderRef,
			c.CompletionReference,
			c.ReviewedAt,
			c.ReviewedBy,
			c.ApprovedAt,
			c.ApprovedBy,
			c.RejectedAt,
			c.RejectedBy,
			c.ProcessedAt,
			c.ProcessedBy,
			c.CompletedAt,
			t.At,
		)

		refund, err := scanRefund(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStaleRefundStatus
		}
		if err != nil {
			return fmt.Errorf("update refund status: %w", err)
		}

		if err := insertHistory(ctx, q, t.History); err != nil {
			return err
		}

		if t.SettledCents > 0 {
			_, err := q.Exec(ctx, `
				UPDATE bookings
				SET total_refunded_cents = total_refunded_cents + $2, updated_at = $3
				WHERE id = $1`,
				refund.BookingID, t.SettledCents, t.At,
			)
			if err != nil {
				return fmt.Errorf("apply refund to booking: %w", err)
			}
		}

		if t.Within != nil {
			if err := t.Within(ctx, q, refund); err != nil {
				return err
			}
		}

		updated = refund
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrStaleRefundStatus) {
			rr.log.Error("Failed to transition refund",
				zap.Error(err),
				zap.String("refund_id", t.RefundID.String()),
				zap.String("to", string(t.To)),
			)
		}
		return nil, err
	}

	return updated, nil
}

func (rr *refundRepository) History(ctx context.Context, refundID uuid.UUID) ([]*entity.RefundStatusHistory, error) {
	query := `
		SELECT id, refund_id, from_status, to_status, actor_id, actor_role, reason, created_at
		FROM refund_status_history
		WHERE refund_id = $1
		ORDER BY created_at, id
	`

	rows, err := rr.db.Query(ctx, query, refundID)
	if err != nil {
		return nil, fmt.Errorf("find history for refund %s: %w", refundID, err)
	}
	defer rows.Close()

	var entries []*entity.RefundStatusHistory
	for rows.Next() {
		var h entity.RefundStatusHistory
		if err := rows.Scan(
			&h.ID,
			&h.RefundID,
			&h.FromStatus,
			&h.ToStatus,
			&h.ActorID,
			&h.ActorRole,
			&h.Reason,
			&h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan refund history: %w", err)
		}
		entries = append(entries, &h)
	}
	return entries, rows.Err()
}

func insertHistory(ctx context.Context, q database.Querier, h *entity.RefundStatusHistory) error {
	if h == nil {
		return nil
	}

	var from *string
	if h.FromStatus != nil {
		s := string(*h.FromStatus)
		from = &s
	}

	_, err := q.Exec(ctx, `
		INSERT INTO refund_status_history (id, refund_id, from_status, to_status, actor_id, actor_role, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID,
		h.RefundID,
		from,
		string(h.ToStatus),
		h.ActorID,
		string(h.ActorRole),
		h.Reason,
		h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert refund history: %w", err)
	}
	return nil
}

func statusStrings(statuses []entity.RefundStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func statusArg(status *entity.RefundStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

func methodArg(method *entity.RefundMethod) *string {
	if method == nil {
		return nil
	}
	s := string(*method)
	return &s
}
