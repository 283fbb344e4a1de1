package entity

import (
	"time"

	"github.com/google/uuid"
)

type NotificationKind string

const (
	NotificationRefundStatus NotificationKind = "refund_status"
	NotificationRefundAlert  NotificationKind = "refund_alert"
)

type Notification struct {
	BaseSimple
	UserID   uuid.UUID        `db:"user_id"`
	RefundID *uuid.UUID       `db:"refund_id"`
	Kind     NotificationKind `db:"kind"`
	Title    string           `db:"title"`
	Body     string           `db:"body"`
	ReadAt   *time.Time       `db:"read_at"`
}

// EmailTemplate is keyed by event, e.g. "refund_approved".
type EmailTemplate struct {
	Key       string    `db:"key"`
	Subject   string    `db:"subject"`
	HTMLBody  string    `db:"html_body"`
	IsActive  bool      `db:"is_active"`
	UpdatedAt time.Time `db:"updated_at"`
}
