package usecase

import (
	"context"
	"fmt"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/pkg/gateway"

	"go.uber.org/zap"
)

// DispatchOutcome is where a processing refund ends up after dispatch.
// Status is processing (awaiting an operator), completed or failed.
type DispatchOutcome struct {
	Status        entity.RefundStatus
	ProviderRef   *string
	Reference     *string
	FailureDetail string
	CreditMemo    *entity.CreditMemo
}

type RefundDispatcher interface {
	Dispatch(ctx context.Context, refund *entity.RefundRequest, booking *entity.Booking) DispatchOutcome
}

type refundDispatcher struct {
	repo     *repository.Repository
	gateways gateway.Registry
	memos    *CreditMemoBuilder
	timeout  time.Duration
	log      *zap.Logger
}

func NewRefundDispatcher(
	repo *repository.Repository,
	gateways gateway.Registry,
	memos *CreditMemoBuilder,
	timeout time.Duration,
	log *zap.Logger,
) RefundDispatcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &refundDispatcher{
		repo:     repo,
		gateways: gateways,
		memos:    memos,
		timeout:  timeout,
		log:      log.With(zap.String("service", "refund_dispatcher")),
	}
}

func (d *refundDispatcher) Dispatch(ctx context.Context, refund *entity.RefundRequest, booking *entity.Booking) DispatchOutcome {
	log := d.log.With(
		zap.String("refund_id", refund.ID.String()),
		zap.String("method", string(refund.RefundMethod)),
	)

	switch refund.RefundMethod {
	case entity.RefundMethodManual, entity.RefundMethodEFT:
		log.Info("Refund awaiting manual settlement")
		return DispatchOutcome{Status: entity.RefundStatusProcessing}

	case entity.RefundMethodCreditMemo:
		cm, err := d.memos.Build(ctx, refund, booking)
		if err != nil {
			log.Error("Credit memo issue failed", zap.Error(err))
			return failed(fmt.Sprintf("credit memo could not be issued: %v", err))
		}
		return DispatchOutcome{
			Status:     entity.RefundStatusCompleted,
			Reference:  &cm.MemoNumber,
			CreditMemo: cm,
		}

	case entity.RefundMethodStripe, entity.RefundMethodPayPal:
		return d.dispatchGateway(ctx, refund, booking, log)

	default:
		return failed(fmt.Sprintf("unsupported refund method %q", refund.RefundMethod))
	}
}

func (d *refundDispatcher) dispatchGateway(ctx context.Context, refund *entity.RefundRequest, booking *entity.Booking, log *zap.Logger) DispatchOutcome {
	provider := string(refund.RefundMethod)

	gw, ok := d.gateways.Get(provider)
	if !ok {
		return failed(fmt.Sprintf("%s gateway is not configured", provider))
	}

	payment, err := d.repo.Payment.FindLatestCompleted(ctx, booking.ID, entity.PaymentProvider(provider))
	if err != nil {
		log.Error("Failed to load original payment", zap.Error(err))
		return failed(fmt.Sprintf("original %s payment could not be loaded: %v", provider, err))
	}
	if payment == nil || payment.TransactionRef == nil || *payment.TransactionRef == "" {
		return failed(fmt.Sprintf("no completed %s payment with a transaction reference for booking %s", provider, booking.Reference))
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := gw.Refund(callCtx, gateway.RefundRequest{
		TransactionRef: *payment.TransactionRef,
		AmountCents:    refund.SettlementCents(),
		Currency:       refund.Currency,
		IdempotencyKey: refund.ID.String(),
		Note:           "Refund for booking " + booking.Reference,
	})
	if err != nil {
		// no automatic retry; a person re-triggers after checking the provider
		log.Warn("Gateway refund failed", zap.Error(err))
		return failed(err.Error())
	}

	log.Info("Gateway refund accepted",
		zap.String("provider_ref", result.ProviderRef),
		zap.String("provider_status", result.Status),
	)
	return DispatchOutcome{
		Status:      entity.RefundStatusCompleted,
		ProviderRef: &result.ProviderRef,
	}
}

func failed(detail string) DispatchOutcome {
	return DispatchOutcome{Status: entity.RefundStatusFailed, FailureDetail: detail}
}
