package wire

import (
	"net/http"

	"rental-booking/internal/adaptor"
	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireRefund(
	r chi.Router,
	refundHandler *adaptor.RefundHandler,
	documentHandler *adaptor.RefundDocumentHandler,
	memoHandler *adaptor.CreditMemoHandler,
	repo *repository.Repository,
	idempotency func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(idempotency)

		// ==================== BOOKING SCOPED ====================
		r.Get("/api/bookings/{id}/refund-eligibility", refundHandler.Eligibility)
		r.Post("/api/bookings/{id}/refunds", refundHandler.CreateRefund)
		r.Get("/api/bookings/{id}/refunds", refundHandler.ListByBooking)

		r.Get("/api/user/refunds", refundHandler.ListMine)

		// ==================== REFUNDS ====================
		r.Route("/api/refunds/{id}", func(r chi.Router) {
			r.Get("/", refundHandler.GetRefund)
			r.Get("/history", refundHandler.History)
			r.Get("/credit-memo", memoHandler.GetByRefund)

			// state transitions; role checks live in the state machine
			r.Post("/review", refundHandler.StartReview)
			r.Post("/approve", refundHandler.Approve)
			r.Post("/reject", refundHandler.Reject)
			r.Post("/process", refundHandler.Process)
			r.Post("/complete", refundHandler.Complete)
			r.Post("/fail", refundHandler.Fail)
			r.Post("/withdraw", refundHandler.Withdraw)

			r.Post("/comments", refundHandler.AddComment)
			r.Get("/comments", refundHandler.Comments)

			r.Route("/documents", func(r chi.Router) {
				r.Post("/", documentHandler.Upload)
				r.Get("/", documentHandler.List)
				r.Get("/{docId}/download", documentHandler.Download)
				r.Delete("/{docId}", documentHandler.Delete)
				r.Post("/{docId}/verify", documentHandler.Verify)
			})
		})

		r.Get("/api/credit-memos/{id}", memoHandler.GetCreditMemo)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/refunds", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.RequireRole(log, entity.RoleAdmin))

		// GET /api/admin/refunds?status=requested
		r.Get("/", refundHandler.ListAll)
	})
}
