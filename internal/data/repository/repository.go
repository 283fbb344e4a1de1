package repository

import (
	"rental-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User           UserRepository
	Session        SessionRepository
	Property       PropertyRepository
	Booking        BookingRepository
	Payment        PaymentRepository
	Refund         RefundRepository
	RefundDocument RefundDocumentRepository
	RefundComment  RefundCommentRepository
	CreditMemo     CreditMemoRepository
	Notification   NotificationRepository
	EmailTemplate  EmailTemplateRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:           NewUserRepository(db, log),
		Session:        NewSessionRepository(db, log),
		Property:       NewPropertyRepository(db, log),
		Booking:        NewBookingRepository(db, log),
		Payment:        NewPaymentRepository(db, log),
		Refund:         NewRefundRepository(db, log),
		RefundDocument: NewRefundDocumentRepository(db, log),
		RefundComment:  NewRefundCommentRepository(db, log),
		CreditMemo:     NewCreditMemoRepository(db, log),
		Notification:   NewNotificationRepository(db, log),
		EmailTemplate:  NewEmailTemplateRepository(db, log),
	}
}
