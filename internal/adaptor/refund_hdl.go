package adaptor

import (
	"context"
	"net/http"

	"rental-booking/internal/dto/request"
	"rental-booking/internal/dto/response"
	"rental-booking/internal/usecase"
	"rental-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RefundHandler struct {
	service usecase.RefundService
	log     *zap.Logger
}

func NewRefundHandler(service usecase.RefundService, log *zap.Logger) *RefundHandler {
	return &RefundHandler{
		service: service,
		log:     log.With(zap.String("handler", "refund")),
	}
}

// ==================== BOOKING SCOPED ====================

// Eligibility handles GET /api/bookings/{id}/refund-eligibility
func (h *RefundHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.service.Eligibility(r.Context(), actor, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "refund eligibility")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// CreateRefund handles POST /api/bookings/{id}/refunds
func (h *RefundHandler) CreateRefund(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.CreateRefundRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	refund, err := h.service.Create(r.Context(), actor, bookingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create refund")
		return
	}

	utils.ResponseCreated(w, "Refund request submitted", refund)
}

// ListByBooking handles GET /api/bookings/{id}/refunds
func (h *RefundHandler) ListByBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	refunds, err := h.service.ListByBooking(r.Context(), actor, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "list booking refunds")
		return
	}

	utils.ResponseSuccess(w, "success", refunds)
}

// ==================== LISTS ====================

// ListMine handles GET /api/user/refunds
func (h *RefundHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req := request.NewPaginatedRequest(paginationFrom(r))

	refunds, err := h.service.ListMine(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "list my refunds")
		return
	}

	utils.ResponseSuccess(w, "success", refunds)
}

// ListAll handles GET /api/admin/refunds?status=
func (h *RefundHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req := &request.RefundListRequest{PaginatedRequest: request.NewPaginatedRequest(paginationFrom(r))}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	refunds, err := h.service.ListAll(r.Context(), actor, req)
	if err != nil {
		handleServiceError(w, h.log, err, "list refunds")
		return
	}

	utils.ResponseSuccess(w, "success", refunds)
}

// GetRefund handles GET /api/refunds/{id}
func (h *RefundHandler) GetRefund(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	refund, err := h.service.Get(r.Context(), actor, refundID)
	if err != nil {
		handleServiceError(w, h.log, err, "get refund")
		return
	}

	utils.ResponseSuccess(w, "success", refund)
}

// History handles GET /api/refunds/{id}/history
func (h *RefundHandler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	history, err := h.service.History(r.Context(), actor, refundID)
	if err != nil {
		handleServiceError(w, h.log, err, "refund history")
		return
	}

	utils.ResponseSuccess(w, "success", history)
}

// ==================== TRANSITIONS ====================

type refundAction func(ctx context.Context, actor usecase.Actor, refundID uuid.UUID) (*response.RefundResponse, error)

// transition decodes the action body into in and runs the action.
func (h *RefundHandler) transition(w http.ResponseWriter, r *http.Request, in any, operation, message string, run refundAction) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	if !decodeJSON(w, r, in) {
		return
	}

	refund, err := run(r.Context(), actor, refundID)
	if err != nil {
		handleServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, message, refund)
}

// StartReview handles POST /api/refunds/{id}/review
func (h *RefundHandler) StartReview(w http.ResponseWriter, r *http.Request) {
	var in request.ReviewInput
	h.transition(w, r, &in, "start refund review", "Refund is under review",
		func(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*response.RefundResponse, error) {
			return h.service.StartReview(ctx, actor, id, &in)
		})
}

// Approve handles POST /api/refunds/{id}/approve
func (h *RefundHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var in request.ApproveInput
	h.transition(w, r, &in, "approve refund", "Refund approved",
		func(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*response.RefundResponse, error) {
			return h.service.Approve(ctx, actor, id, &in)
		})
}

// Reject handles POST /api/refunds/{id}/reject
func (h *RefundHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var in request.RejectInput
	h.transition(w, r, &in, "reject refund", "Refund rejected",
		func(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*response.RefundResponse, error) {
			return h.service.Reject(ctx, actor, id, &in)
		})
}

// Process handles POST /api/refunds/{id}/process. A gateway failure still
// answers 200 with the refund in failed status.
func (h *RefundHandler) Process(w http.ResponseWriter, r *http.Request) {
	var in request.ProcessInput
	h.transition(w, r, &in, "process refund", "Refund processed",
		func(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*response.RefundResponse, error) {
			return h.service.Process(ctx, actor, id, &in)
		})
}

// Complete handles POST /api/refunds/{id}/complete
func (h *RefundHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var in request.CompleteInput
	h.transition(w, r, &in, "complete refund", "Refund completed",
		func(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*response.RefundResponse, error) {
			return h.service.Complete(ctx, actor, id, &in)
		})
}

// Fail handles POST /api/refunds/{id}/fail
func (h *RefundHandler) Fail(w http.ResponseWriter, r *http.Request) {
	var in request.FailInput
	h.transition(w, r, &in, "fail refund", "Refund marked as failed",
		func(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*response.RefundResponse, error) {
			return h.service.Fail(ctx, actor, id, &in)
		})
}

// Withdraw handles POST /api/refunds/{id}/withdraw
func (h *RefundHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var in request.WithdrawInput
	h.transition(w, r, &in, "withdraw refund", "Refund withdrawn",
		func(ctx context.Context, actor usecase.Actor, id uuid.UUID) (*response.RefundResponse, error) {
			return h.service.Withdraw(ctx, actor, id, &in)
		})
}

// ==================== COMMENTS ====================

// AddComment handles POST /api/refunds/{id}/comments
func (h *RefundHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.service.AddComment(r.Context(), actor, refundID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "add refund comment")
		return
	}

	utils.ResponseCreated(w, "Comment added", comment)
}

// Comments handles GET /api/refunds/{id}/comments
func (h *RefundHandler) Comments(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.service.Comments(r.Context(), actor, refundID)
	if err != nil {
		handleServiceError(w, h.log, err, "list refund comments")
		return
	}

	utils.ResponseSuccess(w, "success", comments)
}
