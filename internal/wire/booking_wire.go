package wire

import (
	"net/http"

	"rental-booking/internal/adaptor"
	"rental-booking/internal/data/repository"
	"rental-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	idempotency func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(idempotency)

		// GET /api/user/bookings - bookings made by the caller
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)

		r.Post("/api/bookings", bookingHandler.CreateBooking)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)
		r.Post("/api/bookings/{id}/payments", bookingHandler.RecordPayment)

		// mutations are refused while a refund request is active
		r.Put("/api/bookings/{id}/dates", bookingHandler.UpdateDates)
		r.Put("/api/bookings/{id}/price", bookingHandler.UpdatePrice)
		r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)
	})
}
