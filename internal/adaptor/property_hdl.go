package adaptor

import (
	"net/http"

	"rental-booking/internal/dto/request"
	"rental-booking/internal/usecase"
	"rental-booking/pkg/utils"

	"go.uber.org/zap"
)

type PropertyHandler struct {
	service usecase.PropertyService
	log     *zap.Logger
}

func NewPropertyHandler(service usecase.PropertyService, log *zap.Logger) *PropertyHandler {
	return &PropertyHandler{
		service: service,
		log:     log.With(zap.String("handler", "property")),
	}
}

// CreateProperty handles POST /api/properties
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.CreatePropertyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	property, err := h.service.CreateProperty(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create property")
		return
	}

	utils.ResponseCreated(w, "Property created", property)
}

// GetProperty handles GET /api/properties/{id}
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	propertyID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	property, err := h.service.GetPropertyByID(r.Context(), actor, propertyID)
	if err != nil {
		handleServiceError(w, h.log, err, "get property")
		return
	}

	utils.ResponseSuccess(w, "success", property)
}

// AddAdmin handles POST /api/properties/{id}/admins
func (h *PropertyHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	propertyID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req request.AddPropertyAdminRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	property, err := h.service.AddAdmin(r.Context(), actor, propertyID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "add property admin")
		return
	}

	utils.ResponseSuccess(w, "Property admin added", property)
}
