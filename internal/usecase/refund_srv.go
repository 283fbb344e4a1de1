package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/internal/dto/request"
	"rental-booking/internal/dto/response"
	"rental-booking/pkg/apperror"
	"rental-booking/pkg/database"
	"rental-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Shown to the guest when a refund fails; the real cause stays in internal notes.
const failedCustomerNote = "We could not complete your refund automatically. Our team has been alerted and will follow up with you."

const minRejectNoteLength = 10

type RefundService interface {
	Eligibility(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.EligibilityResponse, error)
	Create(ctx context.Context, actor Actor, bookingID uuid.UUID, req *request.CreateRefundRequest) (*response.RefundResponse, error)
	Get(ctx context.Context, actor Actor, refundID uuid.UUID) (*response.RefundResponse, error)
	ListByBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]response.RefundResponse, error)
	ListMine(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RefundResponse], error)
	ListAll(ctx context.Context, actor Actor, req *request.RefundListRequest) (*response.PaginatedResponse[response.RefundResponse], error)

	StartReview(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.ReviewInput) (*response.RefundResponse, error)
	Approve(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.ApproveInput) (*response.RefundResponse, error)
	Reject(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.RejectInput) (*response.RefundResponse, error)
	Process(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.ProcessInput) (*response.RefundResponse, error)
	Complete(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.CompleteInput) (*response.RefundResponse, error)
	Fail(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.FailInput) (*response.RefundResponse, error)
	Withdraw(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.WithdrawInput) (*response.RefundResponse, error)

	History(ctx context.Context, actor Actor, refundID uuid.UUID) ([]response.RefundHistoryResponse, error)
	AddComment(ctx context.Context, actor Actor, refundID uuid.UUID, req *request.CreateCommentRequest) (*response.RefundCommentResponse, error)
	Comments(ctx context.Context, actor Actor, refundID uuid.UUID) ([]response.RefundCommentResponse, error)
}

type refundService struct {
	repo       *repository.Repository
	access     accessChecker
	calculator *EligibilityCalculator
	dispatcher RefundDispatcher
	notifier   Notifier
	now        func() time.Time
	log        *zap.Logger
}

func NewRefundService(
	repo *repository.Repository,
	calculator *EligibilityCalculator,
	dispatcher RefundDispatcher,
	notifier Notifier,
	log *zap.Logger,
) RefundService {
	log = log.With(zap.String("service", "refund"))
	return &refundService{
		repo:       repo,
		access:     accessChecker{repo: repo, log: log},
		calculator: calculator,
		dispatcher: dispatcher,
		notifier:   notifier,
		now:        time.Now,
		log:        log,
	}
}

// ==================== ELIGIBILITY ====================

func (s *refundService) Eligibility(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.EligibilityResponse, error) {
	booking, property, _, err := s.access.booking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	res := s.eligibility(booking, property)
	return &response.EligibilityResponse{
		BookingID:        booking.ID.String(),
		Policy:           string(res.Policy),
		TotalPaid:        utils.FromCents(res.TotalPaidCents),
		TotalRefunded:    utils.FromCents(res.TotalRefundedCents),
		Available:        utils.FromCents(res.AvailableCents),
		DaysUntilCheckIn: res.DaysUntilCheckIn,
		RefundPercent:    res.RefundPercent,
		PolicyAmount:     utils.FromCents(res.PolicyAmountCents),
		SuggestedAmount:  utils.FromCents(res.SuggestedAmountCents),
		IsPolicyEligible: res.IsPolicyEligible,
		Currency:         booking.Currency,
	}, nil
}

func (s *refundService) eligibility(booking *entity.Booking, property *entity.Property) EligibilityResult {
	return s.calculator.Calculate(EligibilityInput{
		Policy:             property.CancellationPolicy,
		CheckIn:            booking.CheckIn,
		TotalPaidCents:     booking.AmountPaidCents,
		TotalRefundedCents: booking.TotalRefundedCents,
	}, s.now())
}

// ==================== CREATE ====================

func (s *refundService) Create(ctx context.Context, actor Actor, bookingID uuid.UUID, req *request.CreateRefundRequest) (*response.RefundResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create refund validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed: "+utils.FormatValidationErrors(errs), errs)
	}

	reason, ok := req.NormalizedReason()
	if !ok {
		return nil, apperror.Validation("reason detail is required", map[string]string{
			"reason_detail": "This field is required for the selected reason",
		})
	}

	requested, ok := utils.ToCents(req.RequestedAmount)
	if !ok {
		return nil, apperror.Validation("invalid amount", map[string]string{
			"requested_amount": "At most two decimal places",
		})
	}

	booking, property, _, err := s.access.booking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != actor.UserID {
		return nil, apperror.Permission("only the guest who made the booking can request a refund")
	}

	available := booking.RefundableCents()
	if requested > available {
		return nil, apperror.Validation("requested amount exceeds the refundable balance", map[string]string{
			"requested_amount": "Must not exceed " + utils.FromCents(available).StringFixed(2),
		})
	}

	method := entity.RefundMethodManual
	if req.RefundMethod != "" {
		method = entity.RefundMethod(req.RefundMethod)
	}

	now := s.now()
	refund := &entity.RefundRequest{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:            booking.ID,
		GuestID:              actor.UserID,
		RequestedAmountCents: requested,
		Currency:             booking.Currency,
		Status:               entity.RefundStatusRequested,
		Reason:               reason,
		RefundMethod:         method,
	}

	history := &entity.RefundStatusHistory{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		RefundID:   refund.ID,
		ToStatus:   entity.RefundStatusRequested,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Reason:     &reason,
	}

	if err := s.repo.Refund.Create(ctx, refund, history); err != nil {
		if errors.Is(err, repository.ErrActiveRefundExists) {
			return nil, apperror.Conflict("booking already has an active refund request")
		}
		s.log.Error("Failed to create refund", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		return nil, apperror.Internal("failed to create refund request", err)
	}

	s.log.Info("Refund requested",
		zap.String("refund_id", refund.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.Int64("requested_cents", requested),
	)

	s.notifier.RefundChanged(ctx, RefundNotice{
		Refund:   refund,
		Booking:  booking,
		Property: property,
		ActorID:  actor.UserID,
		At:       now,
	})

	resp := response.RefundToResponse(refund, false)
	return &resp, nil
}

// ==================== READS ====================

func (s *refundService) Get(ctx context.Context, actor Actor, refundID uuid.UUID) (*response.RefundResponse, error) {
	access, err := s.access.refund(ctx, actor, refundID)
	if err != nil {
		return nil, err
	}

	resp := response.RefundToResponse(access.refund, access.isManager)
	return &resp, nil
}

func (s *refundService) ListByBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) ([]response.RefundResponse, error) {
	booking, _, manager, err := s.access.booking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	refunds, err := s.repo.Refund.FindByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to list booking refunds", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, apperror.Internal("failed to list refunds", err)
	}

	out := make([]response.RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, response.RefundToResponse(r, manager))
	}
	return out, nil
}

func (s *refundService) ListMine(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RefundResponse], error) {
	refunds, err := s.repo.Refund.FindByGuestID(ctx, actor.UserID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list guest refunds", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, apperror.Internal("failed to list refunds", err)
	}

	total, err := s.repo.Refund.CountByGuestID(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to count guest refunds", zap.Error(err))
		return nil, apperror.Internal("failed to list refunds", err)
	}

	out := make([]response.RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, response.RefundToResponse(r, false))
	}
	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *refundService) ListAll(ctx context.Context, actor Actor, req *request.RefundListRequest) (*response.PaginatedResponse[response.RefundResponse], error) {
	if !actor.IsAdmin() {
		return nil, apperror.Permission("admin access required")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperror.Validation("validation failed: "+utils.FormatValidationErrors(errs), errs)
	}

	var status *entity.RefundStatus
	if req.Status != nil {
		st := entity.RefundStatus(*req.Status)
		status = &st
	}

	refunds, err := s.repo.Refund.FindAll(ctx, repository.RefundFilter{
		Status: status,
		Limit:  req.Limit(),
		Offset: req.Offset(),
	})
	if err != nil {
		s.log.Error("Failed to list refunds", zap.Error(err))
		return nil, apperror.Internal("failed to list refunds", err)
	}

	total, err := s.repo.Refund.Count(ctx, status)
	if err != nil {
		s.log.Error("Failed to count refunds", zap.Error(err))
		return nil, apperror.Internal("failed to list refunds", err)
	}

	out := make([]response.RefundResponse, 0, len(refunds))
	for _, r := range refunds {
		out = append(out, response.RefundToResponse(r, true))
	}
	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

// ==================== TRANSITIONS ====================

func (s *refundService) StartReview(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.ReviewInput) (*response.RefundResponse, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	access, err := s.authorize(ctx, actor, refundID, ActionStartReview)
	if err != nil {
		return nil, err
	}

	now := s.now()
	refund, err := s.transition(ctx, actor, access, ActionStartReview, repository.RefundChanges{
		InternalNotes: in.InternalNotes,
		ReviewedAt:    &now,
		ReviewedBy:    &actor.UserID,
	}, nil, 0, nil)
	if err != nil {
		return nil, err
	}

	resp := response.RefundToResponse(refund, true)
	return &resp, nil
}

func (s *refundService) Approve(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.ApproveInput) (*response.RefundResponse, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	approved, ok := utils.ToCents(in.ApprovedAmount)
	if !ok {
		return nil, apperror.Validation("invalid amount", map[string]string{
			"approved_amount": "At most two decimal places",
		})
	}

	access, err := s.authorize(ctx, actor, refundID, ActionApprove)
	if err != nil {
		return nil, err
	}

	if approved > access.refund.RequestedAmountCents {
		return nil, apperror.Validation("approved amount exceeds the requested amount", map[string]string{
			"approved_amount": "Must not exceed " + utils.FromCents(access.refund.RequestedAmountCents).StringFixed(2),
		})
	}
	if available := access.booking.RefundableCents(); approved > available {
		return nil, apperror.Validation("approved amount exceeds the refundable balance", map[string]string{
			"approved_amount": "Must not exceed " + utils.FromCents(available).StringFixed(2),
		})
	}

	var method *entity.RefundMethod
	if in.RefundMethod != nil {
		m := entity.RefundMethod(*in.RefundMethod)
		method = &m
	}

	now := s.now()
	refund, err := s.transition(ctx, actor, access, ActionApprove, repository.RefundChanges{
		ApprovedAmountCents: &approved,
		RefundMethod:        method,
		CustomerNotes:       in.CustomerNotes,
		InternalNotes:       in.InternalNotes,
		ApprovedAt:          &now,
		ApprovedBy:          &actor.UserID,
	}, nil, 0, nil)
	if err != nil {
		return nil, err
	}

	resp := response.RefundToResponse(refund, true)
	return &resp, nil
}

func (s *refundService) Reject(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.RejectInput) (*response.RefundResponse, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	in.CustomerNotes = strings.TrimSpace(in.CustomerNotes)
	if utf8.RuneCountInString(in.CustomerNotes) < minRejectNoteLength {
		return nil, apperror.Validation("a rejection needs a reason for the guest", map[string]string{
			"customer_notes": "Minimum length is 10",
		})
	}

	access, err := s.authorize(ctx, actor, refundID, ActionReject)
	if err != nil {
		return nil, err
	}

	now := s.now()
	refund, err := s.transition(ctx, actor, access, ActionReject, repository.RefundChanges{
		CustomerNotes: &in.CustomerNotes,
		InternalNotes: in.InternalNotes,
		RejectedAt:    &now,
		RejectedBy:    &actor.UserID,
	}, &in.CustomerNotes, 0, nil)
	if err != nil {
		return nil, err
	}

	resp := response.RefundToResponse(refund, true)
	return &resp, nil
}

// Process claims the refund with an atomic approved -> processing update, then
// dispatches it. A second call finds it processing and is refused, so a refund
// is never dispatched twice.
func (s *refundService) Process(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.ProcessInput) (*response.RefundResponse, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	access, err := s.authorize(ctx, actor, refundID, ActionProcess)
	if err != nil {
		return nil, err
	}

	if available := access.booking.RefundableCents(); access.refund.SettlementCents() > available {
		return nil, apperror.Validation("refund exceeds the refundable balance", map[string]string{
			"approved_amount": "Must not exceed " + utils.FromCents(available).StringFixed(2),
		})
	}

	now := s.now()
	claimed, err := s.transition(ctx, actor, access, ActionProcess, repository.RefundChanges{
		InternalNotes: in.InternalNotes,
		ProcessedAt:   &now,
		ProcessedBy:   &actor.UserID,
	}, nil, 0, nil)
	if err != nil {
		return nil, err
	}

	access.refund = claimed
	outcome := s.dispatcher.Dispatch(ctx, claimed, access.booking)

	var final *entity.RefundRequest
	switch outcome.Status {
	case entity.RefundStatusCompleted:
		final, err = s.settle(ctx, actor, access, outcome, nil)
	case entity.RefundStatusFailed:
		final, err = s.markFailed(ctx, actor, access, failedCustomerNote, outcome.FailureDetail)
	default:
		final = claimed
	}
	if err != nil {
		// the refund stays in processing for an operator to resolve
		s.log.Error("Failed to record dispatch outcome",
			zap.Error(err),
			zap.String("refund_id", refundID.String()),
			zap.String("outcome", string(outcome.Status)),
		)
		return nil, err
	}

	resp := response.RefundToResponse(final, true)
	return &resp, nil
}

func (s *refundService) Complete(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.CompleteInput) (*response.RefundResponse, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	access, err := s.authorize(ctx, actor, refundID, ActionComplete)
	if err != nil {
		return nil, err
	}

	if access.refund.RefundMethod.IsGateway() || access.refund.RefundMethod == entity.RefundMethodCreditMemo {
		return nil, apperror.Validation("only manual and EFT refunds are completed by hand", nil)
	}

	refund, err := s.settle(ctx, actor, access, DispatchOutcome{
		Status:    entity.RefundStatusCompleted,
		Reference: &in.Reference,
	}, in.InternalNotes)
	if err != nil {
		return nil, err
	}

	resp := response.RefundToResponse(refund, true)
	return &resp, nil
}

func (s *refundService) Fail(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.FailInput) (*response.RefundResponse, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	access, err := s.authorize(ctx, actor, refundID, ActionFail)
	if err != nil {
		return nil, err
	}

	refund, err := s.markFailed(ctx, actor, access, in.CustomerNotes, in.InternalNotes)
	if err != nil {
		return nil, err
	}

	resp := response.RefundToResponse(refund, true)
	return &resp, nil
}

func (s *refundService) Withdraw(ctx context.Context, actor Actor, refundID uuid.UUID, in *request.WithdrawInput) (*response.RefundResponse, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	access, err := s.authorize(ctx, actor, refundID, ActionWithdraw)
	if err != nil {
		return nil, err
	}

	refund, err := s.transition(ctx, actor, access, ActionWithdraw, repository.RefundChanges{}, in.Reason, 0, nil)
	if err != nil {
		return nil, err
	}

	resp := response.RefundToResponse(refund, access.isManager)
	return &resp, nil
}

// ==================== HISTORY & COMMENTS ====================

func (s *refundService) History(ctx context.Context, actor Actor, refundID uuid.UUID) ([]response.RefundHistoryResponse, error) {
	access, err := s.access.refund(ctx, actor, refundID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.Refund.History(ctx, access.refund.ID)
	if err != nil {
		s.log.Error("Failed to load refund history", zap.Error(err), zap.String("refund_id", refundID.String()))
		return nil, apperror.Internal("failed to load history", err)
	}

	out := make([]response.RefundHistoryResponse, 0, len(history))
	for _, h := range history {
		out = append(out, response.HistoryToResponse(h))
	}
	return out, nil
}

func (s *refundService) AddComment(ctx context.Context, actor Actor, refundID uuid.UUID, req *request.CreateCommentRequest) (*response.RefundCommentResponse, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	access, err := s.access.refund(ctx, actor, refundID)
	if err != nil {
		return nil, err
	}
	if req.IsInternal && !access.isManager {
		return nil, apperror.Permission("guests cannot post internal comments")
	}

	comment := &entity.RefundComment{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: s.now()},
		RefundID:   access.refund.ID,
		AuthorID:   actor.UserID,
		Body:       req.Body,
		IsInternal: req.IsInternal,
	}

	if err := s.repo.RefundComment.Create(ctx, comment); err != nil {
		s.log.Error("Failed to add comment", zap.Error(err), zap.String("refund_id", refundID.String()))
		return nil, apperror.Internal("failed to add comment", err)
	}

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

// Comments never returns internal comments to anyone but property managers.
func (s *refundService) Comments(ctx context.Context, actor Actor, refundID uuid.UUID) ([]response.RefundCommentResponse, error) {
	access, err := s.access.refund(ctx, actor, refundID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.RefundComment.FindByRefundID(ctx, access.refund.ID, access.isManager)
	if err != nil {
		s.log.Error("Failed to load comments", zap.Error(err), zap.String("refund_id", refundID.String()))
		return nil, apperror.Internal("failed to load comments", err)
	}

	out := make([]response.RefundCommentResponse, 0, len(comments))
	for _, c := range comments {
		if c.IsInternal && !access.isManager {
			continue
		}
		out = append(out, response.CommentToResponse(c))
	}
	return out, nil
}

// ==================== HELPER METHODS ====================

func validateInput(in any) error {
	if errs := utils.ValidateStruct(in); len(errs) > 0 {
		return apperror.Validation("validation failed: "+utils.FormatValidationErrors(errs), errs)
	}
	return nil
}

// authorize loads the refund and checks role and state before anything is written.
func (s *refundService) authorize(ctx context.Context, actor Actor, refundID uuid.UUID, action RefundAction) (*refundAccess, error) {
	access, err := s.access.refund(ctx, actor, refundID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTransition(action, access); err != nil {
		return nil, err
	}
	if _, err := nextStatus(action, access.refund.Status); err != nil {
		return nil, err
	}
	return access, nil
}

// transition applies action as one conditional update plus history row and
// notifies after commit.
func (s *refundService) transition(
	ctx context.Context,
	actor Actor,
	access *refundAccess,
	action RefundAction,
	changes repository.RefundChanges,
	reason *string,
	settled int64,
	within func(ctx context.Context, q database.Querier, refund *entity.RefundRequest) error,
) (*entity.RefundRequest, error) {
	from := access.refund.Status
	to, err := nextStatus(action, from)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updated, err := s.repo.Refund.Transition(ctx, repository.RefundTransition{
		RefundID: access.refund.ID,
		From:     refundTransitions[action].from,
		To:       to,
		At:       now,
		Changes:  changes,
		History: &entity.RefundStatusHistory{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			RefundID:   access.refund.ID,
			FromStatus: &from,
			ToStatus:   to,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Reason:     reason,
		},
		SettledCents: settled,
		Within:       within,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleRefundStatus) {
			// someone else moved it first
			return nil, apperror.InvalidTransition(string(from), string(to))
		}
		return nil, apperror.Internal("failed to update refund", err)
	}

	s.log.Info("Refund transitioned",
		zap.String("refund_id", updated.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.UserID.String()),
	)

	if settled > 0 {
		access.booking.TotalRefundedCents += settled
	}

	s.notifier.RefundChanged(ctx, RefundNotice{
		Refund:   updated,
		Booking:  access.booking,
		Property: access.property,
		From:     &from,
		ActorID:  actor.UserID,
		At:       now,
	})

	return updated, nil
}

// settle completes a processing refund and applies it to the booking's refunded total.
func (s *refundService) settle(ctx context.Context, actor Actor, access *refundAccess, outcome DispatchOutcome, notes *string) (*entity.RefundRequest, error) {
	now := s.now()
	changes := repository.RefundChanges{
		InternalNotes:       notes,
		ProviderRef:         outcome.ProviderRef,
		CompletionReference: outcome.Reference,
		CompletedAt:         &now,
	}

	var within func(ctx context.Context, q database.Querier, refund *entity.RefundRequest) error
	if cm := outcome.CreditMemo; cm != nil {
		within = func(ctx context.Context, q database.Querier, _ *entity.RefundRequest) error {
			return s.repo.CreditMemo.Create(ctx, q, cm)
		}
	}

	reason := "settled via " + string(access.refund.RefundMethod)
	return s.transition(ctx, actor, access, ActionComplete, changes, &reason, access.refund.SettlementCents(), within)
}

func (s *refundService) markFailed(ctx context.Context, actor Actor, access *refundAccess, customerNote, detail string) (*entity.RefundRequest, error) {
	reason := "refund failed"
	return s.transition(ctx, actor, access, ActionFail, repository.RefundChanges{
		CustomerNotes: &customerNote,
		InternalNotes: &detail,
	}, &reason, 0, nil)
}
