package request

import (
	"strings"

	"github.com/shopspring/decimal"
)

var reasonLabels = map[string]string{
	"change_of_plans":   "Change of plans",
	"property_issue":    "Issue with the property",
	"host_cancelled":    "Host cancelled",
	"duplicate_booking": "Duplicate booking",
	"other":             "Other",
}

type CreateRefundRequest struct {
	ReasonCode      string          `json:"reason_code" validate:"required,oneof=change_of_plans property_issue host_cancelled duplicate_booking other"`
	ReasonDetail    *string         `json:"reason_detail,omitempty" validate:"omitempty,max=1000"`
	RequestedAmount decimal.Decimal `json:"requested_amount" validate:"decimal_gt0"`
	RefundMethod    string          `json:"refund_method,omitempty" validate:"omitempty,oneof=manual eft credit_memo stripe paypal"`
}

// NormalizedReason is the single stored form of the reason: "<Label>" or "<Label>: <detail>".
func (r *CreateRefundRequest) NormalizedReason() (string, bool) {
	label, ok := reasonLabels[r.ReasonCode]
	if !ok {
		return "", false
	}

	detail := ""
	if r.ReasonDetail != nil {
		detail = strings.Join(strings.Fields(*r.ReasonDetail), " ")
	}

	if detail == "" {
		// "other" says nothing on its own
		if r.ReasonCode == "other" {
			return "", false
		}
		return label, true
	}
	return label + ": " + detail, true
}

// ==================== TRANSITION INPUTS ====================
// One input type per action so each carries only the fields its action requires.

type ReviewInput struct {
	InternalNotes *string `json:"internal_notes,omitempty" validate:"omitempty,max=2000"`
}

type ApproveInput struct {
	ApprovedAmount decimal.Decimal `json:"approved_amount" validate:"decimal_gt0"`
	RefundMethod   *string         `json:"refund_method,omitempty" validate:"omitempty,oneof=manual eft credit_memo stripe paypal"`
	CustomerNotes  *string         `json:"customer_notes,omitempty" validate:"omitempty,max=2000"`
	InternalNotes  *string         `json:"internal_notes,omitempty" validate:"omitempty,max=2000"`
}

type RejectInput struct {
	CustomerNotes string  `json:"customer_notes" validate:"required,min=10,max=2000"`
	InternalNotes *string `json:"internal_notes,omitempty" validate:"omitempty,max=2000"`
}

type ProcessInput struct {
	InternalNotes *string `json:"internal_notes,omitempty" validate:"omitempty,max=2000"`
}

type CompleteInput struct {
	Reference     string  `json:"reference" validate:"required,max=255"`
	InternalNotes *string `json:"internal_notes,omitempty" validate:"omitempty,max=2000"`
}

type FailInput struct {
	CustomerNotes string `json:"customer_notes" validate:"required,min=10,max=2000"`
	InternalNotes string `json:"internal_notes" validate:"required,max=2000"`
}

type WithdrawInput struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type CreateCommentRequest struct {
	Body       string `json:"body" validate:"required,min=1,max=4000"`
	IsInternal bool   `json:"is_internal"`
}

type RefundListRequest struct {
	PaginatedRequest
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=requested under_review approved rejected processing completed failed withdrawn"`
}
