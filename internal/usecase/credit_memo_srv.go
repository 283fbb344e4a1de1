package usecase

import (
	"context"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/internal/dto/response"
	"rental-booking/pkg/apperror"
	"rental-booking/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreditMemoService interface {
	Get(ctx context.Context, actor Actor, memoID uuid.UUID) (*response.CreditMemoResponse, error)
	GetByRefund(ctx context.Context, actor Actor, refundID uuid.UUID) (*response.CreditMemoResponse, error)
}

type creditMemoService struct {
	repo    *repository.Repository
	access  accessChecker
	storage storage.Storage
	urlTTL  time.Duration
	log     *zap.Logger
}

func NewCreditMemoService(repo *repository.Repository, store storage.Storage, urlTTL time.Duration, log *zap.Logger) CreditMemoService {
	log = log.With(zap.String("service", "credit_memo"))
	return &creditMemoService{
		repo:    repo,
		access:  accessChecker{repo: repo, log: log},
		storage: store,
		urlTTL:  urlTTL,
		log:     log,
	}
}

func (s *creditMemoService) Get(ctx context.Context, actor Actor, memoID uuid.UUID) (*response.CreditMemoResponse, error) {
	cm, err := s.repo.CreditMemo.FindByID(ctx, memoID)
	if err != nil {
		s.log.Error("Failed to load credit memo", zap.Error(err), zap.String("memo_id", memoID.String()))
		return nil, apperror.Internal("failed to load credit memo", err)
	}
	if cm == nil {
		return nil, apperror.NotFound("credit memo", memoID.String())
	}

	if _, err := s.access.refund(ctx, actor, cm.RefundID); err != nil {
		return nil, err
	}
	return s.toResponse(ctx, cm), nil
}

func (s *creditMemoService) GetByRefund(ctx context.Context, actor Actor, refundID uuid.UUID) (*response.CreditMemoResponse, error) {
	if _, err := s.access.refund(ctx, actor, refundID); err != nil {
		return nil, err
	}

	cm, err := s.repo.CreditMemo.FindByRefundID(ctx, refundID)
	if err != nil {
		s.log.Error("Failed to load credit memo", zap.Error(err), zap.String("refund_id", refundID.String()))
		return nil, apperror.Internal("failed to load credit memo", err)
	}
	if cm == nil {
		return nil, apperror.NotFound("credit memo for refund", refundID.String())
	}
	return s.toResponse(ctx, cm), nil
}

// toResponse presigns the stored document; links are never persisted.
func (s *creditMemoService) toResponse(ctx context.Context, cm *entity.CreditMemo) *response.CreditMemoResponse {
	url := ""
	if cm.DocumentKey != nil {
		signed, err := s.storage.PresignedURL(ctx, *cm.DocumentKey, s.urlTTL)
		if err != nil {
			s.log.Warn("Failed to presign credit memo", zap.Error(err), zap.String("memo_id", cm.ID.String()))
		} else {
			url = signed
		}
	}

	resp := response.CreditMemoToResponse(cm, url)
	return &resp
}
