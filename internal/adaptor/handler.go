package adaptor

import (
	"rental-booking/internal/usecase"
	"rental-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth           *AuthHandler
	Property       *PropertyHandler
	Booking        *BookingHandler
	Refund         *RefundHandler
	RefundDocument *RefundDocumentHandler
	CreditMemo     *CreditMemoHandler
	Notification   *NotificationHandler
}

func NewHandler(service *usecase.Service, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(service.Auth, log),
		Property:       NewPropertyHandler(service.Property, log),
		Booking:        NewBookingHandler(service.Booking, log),
		Refund:         NewRefundHandler(service.Refund, log),
		RefundDocument: NewRefundDocumentHandler(service.RefundDocument, config.Document.MaxBytes, log),
		CreditMemo:     NewCreditMemoHandler(service.CreditMemo, log),
		Notification:   NewNotificationHandler(service.Notification, log),
	}
}
