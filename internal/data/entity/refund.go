package entity

import (
	"time"

	"github.com/google/uuid"
)

type RefundStatus string

const (
	RefundStatusRequested   RefundStatus = "requested"
	RefundStatusUnderReview RefundStatus = "under_review"
	RefundStatusApproved    RefundStatus = "approved"
	RefundStatusRejected    RefundStatus = "rejected"
	RefundStatusProcessing  RefundStatus = "processing"
	RefundStatusCompleted   RefundStatus = "completed"
	RefundStatusFailed      RefundStatus = "failed"
	RefundStatusWithdrawn   RefundStatus = "withdrawn"
)

// ActiveRefundStatuses lock the booking against edits.
var ActiveRefundStatuses = []RefundStatus{
	RefundStatusRequested,
	RefundStatusUnderReview,
	RefundStatusApproved,
	RefundStatusProcessing,
}

func (s RefundStatus) IsActive() bool {
	for _, active := range ActiveRefundStatuses {
		if s == active {
			return true
		}
	}
	return false
}

func (s RefundStatus) IsTerminal() bool {
	switch s {
	case RefundStatusRejected, RefundStatusCompleted, RefundStatusFailed, RefundStatusWithdrawn:
		return true
	}
	return false
}

func (s RefundStatus) Valid() bool {
	return s.IsActive() || s.IsTerminal()
}

type RefundMethod string

const (
	RefundMethodManual     RefundMethod = "manual"
	RefundMethodEFT        RefundMethod = "eft"
	RefundMethodCreditMemo RefundMethod = "credit_memo"
	RefundMethodStripe     RefundMethod = "stripe"
	RefundMethodPayPal     RefundMethod = "paypal"
)

// IsGateway reports methods settled through an external payment provider.
func (m RefundMethod) IsGateway() bool {
	return m == RefundMethodStripe || m == RefundMethodPayPal
}

func (m RefundMethod) Valid() bool {
	switch m {
	case RefundMethodManual, RefundMethodEFT, RefundMethodCreditMemo, RefundMethodStripe, RefundMethodPayPal:
		return true
	}
	return false
}

type RefundRequest struct {
	BaseNoDelete
	BookingID            uuid.UUID    `db:"booking_id"`
	GuestID              uuid.UUID    `db:"guest_id"`
	RequestedAmountCents int64        `db:"requested_amount_cents"`
	ApprovedAmountCents  *int64       `db:"approved_amount_cents"`
	Currency             string       `db:"currency"`
	Status               RefundStatus `db:"status"`
	Reason               string       `db:"reason"`
	CustomerNotes        *string      `db:"customer_notes"`
	InternalNotes        *string      `db:"internal_notes"`
	RefundMethod         RefundMethod `db:"refund_method"`
	ProviderRef          *string      `db:"provider_ref"`
	CompletionReference  *string      `db:"completion_reference"`
	ReviewedAt           *time.Time   `db:"reviewed_at"`
	ReviewedBy           *uuid.UUID   `db:"reviewed_by"`
	ApprovedAt           *time.Time   `db:"approved_at"`
	ApprovedBy           *uuid.UUID   `db:"approved_by"`
	RejectedAt           *time.Time   `db:"rejected_at"`
	RejectedBy           *uuid.UUID   `db:"rejected_by"`
	ProcessedAt          *time.Time   `db:"processed_at"`
	ProcessedBy          *uuid.UUID   `db:"processed_by"`
	CompletedAt          *time.Time   `db:"completed_at"`
}

// SettlementCents is the amount that moves when the refund is paid out.
func (r *RefundRequest) SettlementCents() int64 {
	if r.ApprovedAmountCents != nil {
		return *r.ApprovedAmountCents
	}
	return r.RequestedAmountCents
}

type RefundStatusHistory struct {
	BaseSimple
	RefundID   uuid.UUID     `db:"refund_id"`
	FromStatus *RefundStatus `db:"from_status"`
	ToStatus   RefundStatus  `db:"to_status"`
	ActorID    uuid.UUID     `db:"actor_id"`
	ActorRole  UserRole      `db:"actor_role"`
	Reason     *string       `db:"reason"`
}

type RefundComment struct {
	BaseSimple
	RefundID   uuid.UUID `db:"refund_id"`
	AuthorID   uuid.UUID `db:"author_id"`
	Body       string    `db:"body"`
	IsInternal bool      `db:"is_internal"`
}
