package adaptor

import (
	"net/http"

	"rental-booking/internal/dto/request"
	"rental-booking/internal/usecase"
	"rental-booking/pkg/utils"

	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// GetUserBookings handles GET /api/user/bookings (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req := request.NewPaginatedRequest(paginationFrom(r))

	bookings, err := h.service.GetUserBookings(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBooking handles GET /api/bookings/{id} (protected)
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.service.GetBookingByID(r.Context(), actor, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// RecordPayment handles POST /api/bookings/{id}/payments (protected)
func (h *BookingHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.RecordPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), actor, bookingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "record payment")
		return
	}

	utils.ResponseCreated(w, "Payment recorded", payment)
}

// UpdateDates handles PUT /api/bookings/{id}/dates (protected)
func (h *BookingHandler) UpdateDates(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateBookingDatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.UpdateDates(r.Context(), actor, bookingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update booking dates")
		return
	}

	utils.ResponseSuccess(w, "Booking dates updated", booking)
}

// UpdatePrice handles PUT /api/bookings/{id}/price (protected)
func (h *BookingHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateBookingPriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	booking, err := h.service.UpdatePrice(r.Context(), actor, bookingID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update booking price")
		return
	}

	utils.ResponseSuccess(w, "Booking price updated", booking)
}

// CancelBooking handles PUT /api/bookings/{id}/cancel (protected)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), actor, bookingID)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}
