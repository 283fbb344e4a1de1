package response

import (
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/utils"

	"github.com/shopspring/decimal"
)

// RefundResponse is shared by guests and managers; InternalNotes is only ever
// filled for managers.
type RefundResponse struct {
	ID                  string              `json:"id"`
	BookingID           string              `json:"booking_id"`
	GuestID             string              `json:"guest_id"`
	RequestedAmount     decimal.Decimal     `json:"requested_amount"`
	ApprovedAmount      *decimal.Decimal    `json:"approved_amount,omitempty"`
	Currency            string              `json:"currency"`
	Status              entity.RefundStatus `json:"status"`
	Reason              string              `json:"reason"`
	RefundMethod        entity.RefundMethod `json:"refund_method"`
	CustomerNotes       *string             `json:"customer_notes,omitempty"`
	InternalNotes       *string             `json:"internal_notes,omitempty"`
	ProviderRef         *string             `json:"provider_ref,omitempty"`
	CompletionReference *string             `json:"completion_reference,omitempty"`
	IsActive            bool                `json:"is_active"`
	ReviewedAt          *time.Time          `json:"reviewed_at,omitempty"`
	ApprovedAt          *time.Time          `json:"approved_at,omitempty"`
	RejectedAt          *time.Time          `json:"rejected_at,omitempty"`
	ProcessedAt         *time.Time          `json:"processed_at,omitempty"`
	CompletedAt         *time.Time          `json:"completed_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func RefundToResponse(r *entity.RefundRequest, includeInternal bool) RefundResponse {
	resp := RefundResponse{
		ID:                  r.ID.String(),
		BookingID:           r.BookingID.String(),
		GuestID:             r.GuestID.String(),
		RequestedAmount:     utils.FromCents(r.RequestedAmountCents),
		Currency:            r.Currency,
		Status:              r.Status,
		Reason:              r.Reason,
		RefundMethod:        r.RefundMethod,
		CustomerNotes:       r.CustomerNotes,
		ProviderRef:         r.ProviderRef,
		CompletionReference: r.CompletionReference,
		IsActive:            r.Status.IsActive(),
		ReviewedAt:          r.ReviewedAt,
		ApprovedAt:          r.ApprovedAt,
		RejectedAt:          r.RejectedAt,
		ProcessedAt:         r.ProcessedAt,
		CompletedAt:         r.CompletedAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}

	if r.ApprovedAmountCents != nil {
		approved := utils.FromCents(*r.ApprovedAmountCents)
		resp.ApprovedAmount = &approved
	}
	if includeInternal {
		resp.InternalNotes = r.InternalNotes
	}

	return resp
}

type RefundHistoryResponse struct {
	ID         string               `json:"id"`
	FromStatus *entity.RefundStatus `json:"from_status,omitempty"`
	ToStatus   entity.RefundStatus  `json:"to_status"`
	ActorID    string               `json:"actor_id"`
	ActorRole  entity.UserRole      `json:"actor_role"`
	Reason     *string              `json:"reason,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

func HistoryToResponse(h *entity.RefundStatusHistory) RefundHistoryResponse {
	return RefundHistoryResponse{
		ID:         h.ID.String(),
		FromStatus: h.FromStatus,
		ToStatus:   h.ToStatus,
		ActorID:    h.ActorID.String(),
		ActorRole:  h.ActorRole,
		Reason:     h.Reason,
		CreatedAt:  h.CreatedAt,
	}
}

type RefundCommentResponse struct {
	ID         string    `json:"id"`
	RefundID   string    `json:"refund_id"`
	AuthorID   string    `json:"author_id"`
	Body       string    `json:"body"`
	IsInternal bool      `json:"is_internal,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func CommentToResponse(c *entity.RefundComment) RefundCommentResponse {
	return RefundCommentResponse{
		ID:         c.ID.String(),
		RefundID:   c.RefundID.String(),
		AuthorID:   c.AuthorID.String(),
		Body:       c.Body,
		IsInternal: c.IsInternal,
		CreatedAt:  c.CreatedAt,
	}
}

type RefundDocumentResponse struct {
	ID           string              `json:"id"`
	RefundID     string              `json:"refund_id"`
	UploadedBy   string              `json:"uploaded_by"`
	FileName     string              `json:"file_name"`
	ContentType  string              `json:"content_type"`
	SizeBytes    int64               `json:"size_bytes"`
	DocumentType entity.DocumentType `json:"document_type"`
	URL          string              `json:"url,omitempty"`
	IsVerified   bool                `json:"is_verified"`
	VerifiedAt   *time.Time          `json:"verified_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

func DocumentToResponse(d *entity.RefundDocument, url string) RefundDocumentResponse {
	return RefundDocumentResponse{
		ID:           d.ID.String(),
		RefundID:     d.RefundID.String(),
		UploadedBy:   d.UploadedBy.String(),
		FileName:     d.FileName,
		ContentType:  d.ContentType,
		SizeBytes:    d.SizeBytes,
		DocumentType: d.DocumentType,
		URL:          url,
		IsVerified:   d.IsVerified,
		VerifiedAt:   d.VerifiedAt,
		CreatedAt:    d.CreatedAt,
	}
}

type DocumentDownloadResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type EligibilityResponse struct {
	BookingID        string          `json:"booking_id"`
	Policy           string          `json:"policy"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	TotalRefunded    decimal.Decimal `json:"total_refunded"`
	Available        decimal.Decimal `json:"available"`
	DaysUntilCheckIn int             `json:"days_until_checkin"`
	RefundPercent    int             `json:"refund_percent"`
	PolicyAmount     decimal.Decimal `json:"policy_amount"`
	SuggestedAmount  decimal.Decimal `json:"suggested_amount"`
	IsPolicyEligible bool            `json:"is_policy_eligible"`
	Currency         string          `json:"currency"`
}
