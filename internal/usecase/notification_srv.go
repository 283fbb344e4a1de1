package usecase

import (
	"context"
	"errors"
	"time"

	"rental-booking/internal/data/repository"
	"rental-booking/internal/dto/request"
	"rental-booking/internal/dto/response"
	"rental-booking/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService interface {
	List(ctx context.Context, actor Actor, req *request.NotificationListRequest) (*response.PaginatedResponse[response.NotificationResponse], error)
	MarkRead(ctx context.Context, actor Actor, notificationID uuid.UUID) error
}

type notificationService struct {
	repo repository.NotificationRepository
	now  func() time.Time
	log  *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) NotificationService {
	return &notificationService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "notification")),
	}
}

func (s *notificationService) List(ctx context.Context, actor Actor, req *request.NotificationListRequest) (*response.PaginatedResponse[response.NotificationResponse], error) {
	items, err := s.repo.FindByUserID(ctx, actor.UserID, req.UnreadOnly, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list notifications", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, apperror.Internal("failed to list notifications", err)
	}

	total, err := s.repo.CountByUserID(ctx, actor.UserID, req.UnreadOnly)
	if err != nil {
		s.log.Error("Failed to count notifications", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, apperror.Internal("failed to list notifications", err)
	}

	out := make([]response.NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, response.NotificationToResponse(n))
	}
	return response.NewPaginatedResponse(out, req.Page, req.Limit(), total), nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor Actor, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, notificationID, actor.UserID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.NotFound("notification", notificationID.String())
		}
		s.log.Error("Failed to mark notification read", zap.Error(err), zap.String("notification_id", notificationID.String()))
		return apperror.Internal("failed to update notification", err)
	}
	return nil
}
