package usecase

import (
	"context"
	"strings"
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

type PropertyService interface {
	CreateProperty(ctx context.Context, actor Actor, req *request.CreatePropertyRequest) (*response.PropertyResponse, error)
	GetPropertyByID(ctx context.Context, actor Actor, propertyID uuid.UUID) (*response.PropertyResponse, error)
	AddAdmin(ctx context.Context, actor Actor, propertyID uuid.UUID, req *request.AddPropertyAdminRequest) (*response.PropertyResponse, error)
}

type propertyService struct {
	repo   *repository.Repository
	access accessChecker
	now    func() time.Time
	log    *zap.Logger
}

func NewPropertyService(repo *repository.Repository, log *zap.Logger) PropertyService {
	log = log.With(zap.String("service", "property"))
	return &propertyService{
		repo:   repo,
		access: accessChecker{repo: repo, log: log},
		now:    time.Now,
		log:    log,
	}
}

func (s *propertyService) CreateProperty(ctx context.Context, actor Actor, req *request.CreatePropertyRequest) (*response.PropertyResponse, error) {
	if actor.Role != entity.RoleHost && !actor.IsAdmin() {
		return nil, apperror.Permission("only hosts can list properties")
	}
	if err := validateInput(req); err != nil {
		return nil, err
	}

	now := s.now()
	property := &entity.Property{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:            actor.UserID,
		Name:               strings.TrimSpace(req.Name),
		City:               strings.TrimSpace(req.City),
		CancellationPolicy: entity.CancellationPolicy(req.CancellationPolicy),
		Currency:           strings.ToUpper(req.Currency),
	}

	if err := s.repo.Property.Create(ctx, property); err != nil {
		s.log.Error("Failed to create property", zap.Error(err), zap.String("owner_id", actor.UserID.String()))
		return nil, apperror.Internal("failed to create property", err)
	}

	s.log.Info("Property created",
		zap.String("property_id", property.ID.String()),
		zap.String("policy", req.CancellationPolicy),
	)

	resp := response.PropertyToResponse(property)
	resp.AdminIDs = []string{actor.UserID.String()}
	return &resp, nil
}

// GetPropertyByID is public; the admin list is only shown to managers.
func (s *propertyService) GetPropertyByID(ctx context.Context, actor Actor, propertyID uuid.UUID) (*response.PropertyResponse, error) {
	property, err := s.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	resp := response.PropertyToResponse(property)

	manager, err := s.access.isManager(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}
	if manager {
		if resp.AdminIDs, err = s.adminIDs(ctx, propertyID); err != nil {
			return nil, err
		}
	}
	return &resp, nil
}

// AddAdmin lets the owner (or a platform admin) share management of a property.
func (s *propertyService) AddAdmin(ctx context.Context, actor Actor, propertyID uuid.UUID, req *request.AddPropertyAdminRequest) (*response.PropertyResponse, error) {
	if err := validateInput(req); err != nil {
		return nil, err
	}

	property, err := s.load(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != actor.UserID && !actor.IsAdmin() {
		return nil, apperror.Permission("only the owner can add administrators")
	}

	userID, err := utils.ParseUUID(req.UserID)
	if err != nil {
		return nil, apperror.Validation("invalid user ID", map[string]string{"user_id": "Must be a valid UUID"})
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load user", zap.Error(err), zap.String("user_id", req.UserID))
		return nil, apperror.Internal("failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user", req.UserID)
	}

	if err := s.repo.Property.AddAdmin(ctx, &entity.PropertyAdmin{
		PropertyID: propertyID,
		UserID:     userID,
		CreatedAt:  s.now(),
	}); err != nil {
		s.log.Error("Failed to add property admin", zap.Error(err), zap.String("property_id", propertyID.String()))
		return nil, apperror.Internal("failed to add administrator", err)
	}

	s.log.Info("Property admin added",
		zap.String("property_id", propertyID.String()),
		zap.String("user_id", req.UserID),
	)

	resp := response.PropertyToResponse(property)
	if resp.AdminIDs, err = s.adminIDs(ctx, propertyID); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *propertyService) load(ctx context.Context, propertyID uuid.UUID) (*entity.Property, error) {
	property, err := s.repo.Property.FindByID(ctx, propertyID)
	if err != nil {
		s.log.Error("Failed to load property", zap.Error(err), zap.String("property_id", propertyID.String()))
		return nil, apperror.Internal("failed to load property", err)
	}
	if property == nil {
		return nil, apperror.NotFound("property", propertyID.String())
	}
	return property, nil
}

func (s *propertyService) adminIDs(ctx context.Context, propertyID uuid.UUID) ([]string, error) {
	ids, err := s.repo.Property.FindAdminIDs(ctx, propertyID)
	if err != nil {
		s.log.Error("Failed to load property admins", zap.Error(err), zap.String("property_id", propertyID.String()))
		return nil, apperror.Internal("failed to load administrators", err)
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out, nil
}
