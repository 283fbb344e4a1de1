package usecase

import (
	"rental-booking/internal/data/repository"
	"rental-booking/pkg/gateway"
	"rental-booking/pkg/mailer"
	"rental-booking/pkg/messaging"
	"rental-booking/pkg/storage"
	"rental-booking/pkg/utils"

	"go.uber.org/zap"
)

// Infra groups the outside systems services talk to.
type Infra struct {
	Gateways  gateway.Registry
	Storage   storage.Storage
	Mailer    mailer.Sender
	Publisher messaging.Publisher
}

type Service struct {
	Auth           AuthService
	Property       PropertyService
	Booking        BookingService
	Refund         RefundService
	RefundDocument RefundDocumentService
	CreditMemo     CreditMemoService
	Notification   NotificationService
}

func NewService(repo *repository.Repository, config *utils.Config, infra Infra, log *zap.Logger) *Service {
	memos := NewCreditMemoBuilder(repo, infra.Storage, log)
	dispatcher := NewRefundDispatcher(repo, infra.Gateways, memos, config.Gateway.Timeout, log)
	notifier := NewNotifier(repo, infra.Mailer, infra.Publisher, config.Email.Timeout, log)
	calculator := NewEligibilityCalculator(config.Refund.Policies)

	return &Service{
		Auth:           NewAuthService(repo, config, log),
		Property:       NewPropertyService(repo, log),
		Booking:        NewBookingService(repo, log),
		Refund:         NewRefundService(repo, calculator, dispatcher, notifier, log),
		RefundDocument: NewRefundDocumentService(repo, infra.Storage, config.Document, log),
		CreditMemo:     NewCreditMemoService(repo, infra.Storage, config.Document.URLTTL, log),
		Notification:   NewNotificationService(repo.Notification, log),
	}
}
