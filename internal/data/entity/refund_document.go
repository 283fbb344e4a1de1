package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	DocumentReceipt             DocumentType = "receipt"
	DocumentProofOfCancellation DocumentType = "proof_of_cancellation"
	DocumentBankStatement       DocumentType = "bank_statement"
	DocumentOther               DocumentType = "other"
)

type RefundDocument struct {
	BaseSimple
	RefundID     uuid.UUID    `db:"refund_id"`
	UploadedBy   uuid.UUID    `db:"uploaded_by"`
	FileName     string       `db:"file_name"`
	ContentType  string       `db:"content_type"`
	SizeBytes    int64        `db:"size_bytes"`
	StorageKey   string       `db:"storage_key"`
	DocumentType DocumentType `db:"document_type"`
	IsVerified   bool         `db:"is_verified"`
	VerifiedBy   *uuid.UUID   `db:"verified_by"`
	VerifiedAt   *time.Time   `db:"verified_at"`
}
