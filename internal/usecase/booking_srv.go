package usecase

import (
	"context"
	"errors"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/internal/dto/request"
	"rental-booking/internal/dto/response"
	"rental-booking/pkg/apperror"
	"rental-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	CreateBooking(ctx context.Context, actor Actor, req *request.CreateBookingRequest) (*response.BookingDetailResponse, error)
	GetUserBookings(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingByID(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.BookingDetailResponse, error)

	// Payment
	RecordPayment(ctx context.Context, actor Actor, bookingID uuid.UUID, req *request.RecordPaymentRequest) (*response.PaymentResponse, error)

	// Mutations refused while a refund is active
	UpdateDates(ctx context.Context, actor Actor, bookingID uuid.UUID, req *request.UpdateBookingDatesRequest) (*response.BookingResponse, error)
	UpdatePrice(ctx context.Context, actor Actor, bookingID uuid.UUID, req *request.UpdateBookingPriceRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.BookingResponse, error)
}

type bookingService struct {
	repo   *repository.Repository
	access accessChecker
	now    func() time.Time
	log    *zap.Logger
}

func NewBookingService(repo *repository.Repository, log *zap.Logger) BookingService {
	log = log.With(zap.String("service", "booking"))
	return &bookingService{
		repo:   repo,
		access: accessChecker{repo: repo, log: log},
		now:    time.Now,
		log:    log,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor Actor, req *request.CreateBookingRequest) (*response.BookingDetailResponse, error) {
	if err := validateInput(req); err != nil {
		s.log.Warn("Create booking validation failed", zap.Error(err))
		return nil, err
	}

	checkIn, checkOut, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	propertyID, err := utils.ParseUUID(req.PropertyID)
	if err != nil {
		return nil, apperror.Validation("invalid property ID", map[string]string{"property_id": "Must be a valid UUID"})
	}

	property, err := s.repo.Property.FindByID(ctx, propertyID)
	if err != nil {
		s.log.Error("Failed to load property", zap.Error(err), zap.String("property_id", req.PropertyID))
		return nil, apperror.Internal("failed to load property", err)
	}
	if property == nil {
		return nil, apperror.NotFound("property", req.PropertyID)
	}

	now := s.now()
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:  utils.GenerateBookingReference(now),
		PropertyID: property.ID,
		GuestID:    actor.UserID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     req.Guests,
		Currency:   property.Currency,
		Status:     entity.BookingStatusPending,
	}

	lines := make([]*entity.BookingLineItem, 0, len(req.LineItems))
	for i, item := range req.LineItems {
		amount, ok := utils.ToCents(item.Amount)
		if !ok {
			return nil, apperror.Validation("invalid amount", map[string]string{
				"line_items": "Amounts allow at most two decimal places",
			})
		}
		tax := item.Amount.Mul(item.TaxRate).Shift(2).Round(0).IntPart()

		lines = append(lines, &entity.BookingLineItem{
			BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now.Add(time.Duration(i) * time.Microsecond)},
			BookingID:   booking.ID,
			Description: item.Description,
			AmountCents: amount,
			TaxCents:    tax,
			TaxRate:     item.TaxRate,
		})
		booking.TotalPriceCents += amount + tax
	}

	if err := s.repo.Booking.Create(ctx, booking, lines); err != nil {
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("user_id", actor.UserID.String()),
			zap.String("property_id", req.PropertyID),
		)
		return nil, apperror.Internal("failed to create booking", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
	)

	return s.detail(booking, lines, nil, nil, false, false), nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, actor Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByGuestID(ctx, actor.UserID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, apperror.Internal("failed to get bookings", err)
	}

	total, err := s.repo.Booking.CountByGuestID(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, apperror.Internal("failed to get bookings", err)
	}

	out := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, response.BookingToResponse(b))
	}
	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

// GetBookingByID embeds the booking's refunds so clients can tell whether it is locked.
func (s *bookingService) GetBookingByID(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.BookingDetailResponse, error) {
	booking, _, manager, err := s.access.booking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.Booking.FindLineItems(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to load line items", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, apperror.Internal("failed to load booking", err)
	}

	payments, err := s.repo.Payment.FindByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to load payments", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, apperror.Internal("failed to load booking", err)
	}

	refunds, err := s.repo.Refund.FindByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to load refunds", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, apperror.Internal("failed to load booking", err)
	}

	active := false
	for _, r := range refunds {
		if r.Status.IsActive() {
			active = true
			break
		}
	}

	return s.detail(booking, lines, payments, refunds, active, manager), nil
}

func (s *bookingService) RecordPayment(ctx context.Context, actor Actor, bookingID uuid.UUID, req *request.RecordPaymentRequest) (*response.PaymentResponse, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	amount, ok := utils.ToCents(req.Amount)
	if !ok {
		return nil, apperror.Validation("invalid amount", map[string]string{"amount": "At most two decimal places"})
	}

	booking, _, _, err := s.access.booking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, apperror.Conflict("booking is cancelled")
	}

	status := entity.PaymentStatusCompleted
	if req.Status != "" {
		status = entity.PaymentStatus(req.Status)
	}

	if outstanding := booking.TotalPriceCents - booking.AmountPaidCents; status == entity.PaymentStatusCompleted && amount > outstanding {
		return nil, apperror.Validation("payment exceeds the outstanding balance", map[string]string{
			"amount": "Must not exceed " + utils.FromCents(outstanding).StringFixed(2),
		})
	}

	now := s.now()
	payment := &entity.Payment{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:      booking.ID,
		Provider:       entity.PaymentProvider(req.Provider),
		TransactionRef: req.TransactionRef,
		AmountCents:    amount,
		Currency:       booking.Currency,
		Status:         status,
	}
	if status == entity.PaymentStatusCompleted {
		payment.PaidAt = &now
	}

	if err := s.repo.Payment.Record(ctx, payment); err != nil {
		s.log.Error("Failed to record payment", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, apperror.Internal("failed to record payment", err)
	}

	s.log.Info("Payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("booking_id", bookingID.String()),
		zap.String("provider", req.Provider),
		zap.Int64("amount_cents", amount),
	)

	resp := response.PaymentToResponse(payment)
	return &resp, nil
}

// ==================== LOCKED MUTATIONS ====================

func (s *bookingService) UpdateDates(ctx context.Context, actor Actor, bookingID uuid.UUID, req *request.UpdateBookingDatesRequest) (*response.BookingResponse, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	checkIn, checkOut, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	booking, err := s.loadMutable(ctx, actor, bookingID, false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.Booking.UpdateDates(ctx, booking.ID, checkIn, checkOut, now); err != nil {
		return nil, s.mutationError(err, booking.ID, "update dates")
	}

	booking.CheckIn, booking.CheckOut, booking.UpdatedAt = checkIn, checkOut, now
	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) UpdatePrice(ctx context.Context, actor Actor, bookingID uuid.UUID, req *request.UpdateBookingPriceRequest) (*response.BookingResponse, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	price, ok := utils.ToCents(req.TotalPrice)
	if !ok {
		return nil, apperror.Validation("invalid amount", map[string]string{"total_price": "At most two decimal places"})
	}

	booking, err := s.loadMutable(ctx, actor, bookingID, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.Booking.UpdatePrice(ctx, booking.ID, price, now); err != nil {
		return nil, s.mutationError(err, booking.ID, "update price")
	}

	booking.TotalPriceCents, booking.UpdatedAt = price, now
	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*response.BookingResponse, error) {
	booking, err := s.loadMutable(ctx, actor, bookingID, false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusCancelled, now); err != nil {
		return nil, s.mutationError(err, booking.ID, "cancel")
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("actor_id", actor.UserID.String()),
	)

	booking.Status, booking.UpdatedAt = entity.BookingStatusCancelled, now
	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

// loadMutable loads a booking for editing and refuses while a refund is active.
func (s *bookingService) loadMutable(ctx context.Context, actor Actor, bookingID uuid.UUID, managerOnly bool) (*entity.Booking, error) {
	booking, _, manager, err := s.access.booking(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if managerOnly && !manager {
		return nil, apperror.Permission("only property administrators can change the price")
	}

	switch booking.Status {
	case entity.BookingStatusCancelled, entity.BookingStatusCompleted:
		return nil, apperror.Conflict("booking is " + string(booking.Status))
	}

	if err := s.ensureUnlocked(ctx, booking.ID); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ensureUnlocked(ctx context.Context, bookingID uuid.UUID) error {
	active, err := s.repo.Refund.HasActive(ctx, bookingID)
	if err != nil {
		s.log.Error("Failed to check refund lock", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return apperror.Internal("failed to check booking lock", err)
	}
	if active {
		return apperror.RefundLocked(bookingID.String())
	}
	return nil
}

// mutationError maps the repository's guarded-update failure, which catches a
// refund opened between the check and the write.
func (s *bookingService) mutationError(err error, bookingID uuid.UUID, op string) error {
	if errors.Is(err, repository.ErrBookingLocked) {
		return apperror.RefundLocked(bookingID.String())
	}
	s.log.Error("Failed to "+op, zap.Error(err), zap.String("booking_id", bookingID.String()))
	return apperror.Internal("failed to "+op+" booking", err)
}

func (s *bookingService) detail(
	booking *entity.Booking,
	lines []*entity.BookingLineItem,
	payments []*entity.Payment,
	refunds []*entity.RefundRequest,
	active, manager bool,
) *response.BookingDetailResponse {
	resp := &response.BookingDetailResponse{
		BookingResponse: response.BookingToResponse(booking),
		LineItems:       make([]response.LineItemResponse, 0, len(lines)),
		Payments:        make([]response.PaymentResponse, 0, len(payments)),
		Refunds:         make([]response.RefundResponse, 0, len(refunds)),
		HasActiveRefund: active,
	}
	for _, l := range lines {
		resp.LineItems = append(resp.LineItems, response.LineItemToResponse(l))
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, response.PaymentToResponse(p))
	}
	for _, r := range refunds {
		resp.Refunds = append(resp.Refunds, response.RefundToResponse(r, manager))
	}
	return resp
}

func parseStay(in, out string) (time.Time, time.Time, error) {
	checkIn, err := time.Parse("2006-01-02", in)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("invalid check-in date", map[string]string{"check_in": "Use YYYY-MM-DD"})
	}
	checkOut, err := time.Parse("2006-01-02", out)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("invalid check-out date", map[string]string{"check_out": "Use YYYY-MM-DD"})
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, apperror.Validation("check-out must be after check-in", map[string]string{
			"check_out": "Must be after check_in",
		})
	}
	return checkIn, checkOut, nil
}

