package usecase

import (
	"context"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor is who performs an operation. Every refund operation takes it explicitly.
type Actor struct {
	UserID uuid.UUID
	Role   entity.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

// refundAccess is a loaded refund together with what the actor may do with it.
type refundAccess struct {
	refund    *entity.RefundRequest
	booking   *entity.Booking
	property  *entity.Property
	isGuest   bool
	isManager bool
}

type accessChecker struct {
	repo *repository.Repository
	log  *zap.Logger
}

// isManager reports whether actor administers the property. Admins manage everything.
func (c accessChecker) isManager(ctx context.Context, actor Actor, propertyID uuid.UUID) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}

	ok, err := c.repo.Property.IsAdmin(ctx, propertyID, actor.UserID)
	if err != nil {
		c.log.Error("Failed to check property admin",
			zap.Error(err),
			zap.String("property_id", propertyID.String()),
			zap.String("user_id", actor.UserID.String()),
		)
		return false, apperror.Internal("failed to check permissions", err)
	}
	return ok, nil
}

// booking loads a booking the actor owns or manages.
func (c accessChecker) booking(ctx context.Context, actor Actor, bookingID uuid.UUID) (*entity.Booking, *entity.Property, bool, error) {
	booking, err := c.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		c.log.Error("Failed to load booking", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, nil, false, apperror.Internal("failed to load booking", err)
	}
	if booking == nil {
		return nil, nil, false, apperror.NotFound("booking", bookingID.String())
	}

	property, err := c.repo.Property.FindByID(ctx, booking.PropertyID)
	if err != nil {
		c.log.Error("Failed to load property", zap.Error(err), zap.String("property_id", booking.PropertyID.String()))
		return nil, nil, false, apperror.Internal("failed to load property", err)
	}
	if property == nil {
		return nil, nil, false, apperror.NotFound("property", booking.PropertyID.String())
	}

	manager, err := c.isManager(ctx, actor, booking.PropertyID)
	if err != nil {
		return nil, nil, false, err
	}
	if !manager && booking.GuestID != actor.UserID {
		return nil, nil, false, apperror.Permission("you do not have access to this booking")
	}

	return booking, property, manager, nil
}

// refund loads a refund and its booking, failing unless the actor is the
// requesting guest or manages the property.
func (c accessChecker) refund(ctx context.Context, actor Actor, refundID uuid.UUID) (*refundAccess, error) {
	refund, err := c.repo.Refund.FindByID(ctx, refundID)
	if err != nil {
		c.log.Error("Failed to load refund", zap.Error(err), zap.String("refund_id", refundID.String()))
		return nil, apperror.Internal("failed to load refund", err)
	}
	if refund == nil {
		return nil, apperror.NotFound("refund", refundID.String())
	}

	booking, property, manager, err := c.booking(ctx, actor, refund.BookingID)
	if err != nil {
		if apperror.Is(err, apperror.KindPermission) {
			return nil, apperror.Permission("you do not have access to this refund")
		}
		return nil, err
	}

	return &refundAccess{
		refund:    refund,
		booking:   booking,
		property:  property,
		isGuest:   refund.GuestID == actor.UserID,
		isManager: manager,
	}, nil
}
