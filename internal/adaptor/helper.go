package adaptor

import (
	"errors"
	"io"
	"net/http"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/usecase"
	"rental-booking/pkg/apperror"
	"rental-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

// actorFrom builds the acting user from the auth middleware context.
func actorFrom(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return usecase.Actor{}, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return usecase.Actor{UserID: userID, Role: entity.UserRole(role)}, true
}

func urlUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid "+param, map[string]string{param: "Must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads the body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func paginationFrom(r *http.Request) (int, int) {
	query := r.URL.Query()
	return utils.ParseInt(query.Get("page"), 1), utils.ParseInt(query.Get("per_page"), 10)
}

// handleServiceError maps typed service errors to the response envelope.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	appErr, ok := apperror.As(err)
	if !ok {
		log.Error(operation+" failed", zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	kind := appErr.Kind
	switch {
	case kind == apperror.KindInternal || kind == apperror.KindGateway:
		log.Error(operation+" failed", zap.Error(err), zap.String("operation", operation))
		utils.ResponseError(w, kind.HTTPStatus(), kind.Code(), appErr.Message, nil)
		return
	case kind == apperror.KindPermission || kind == apperror.KindUnauthorized:
		log.Warn(operation+" denied", zap.Error(err), zap.String("operation", operation))
	default:
		log.Debug(operation+" rejected", zap.Error(err), zap.String("operation", operation))
	}

	var fields any
	if len(appErr.Fields) > 0 {
		fields = appErr.Fields
	}
	utils.ResponseError(w, kind.HTTPStatus(), kind.Code(), appErr.Message, fields)
}
