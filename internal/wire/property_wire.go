package wire

import (
	"rental-booking/internal/adaptor"
	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/pkg/middleware"
	"rental-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireProperty(
	r chi.Router,
	propertyHandler *adaptor.PropertyHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Route("/api/properties", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/properties - hosts and platform admins only
		r.With(middleware.RequireRole(log, entity.RoleHost, entity.RoleAdmin)).Post("/", propertyHandler.CreateProperty)

		r.Get("/{id}", propertyHandler.GetProperty)

		// owner or platform admin, checked in the service
		r.Post("/{id}/admins", propertyHandler.AddAdmin)
	})
}
