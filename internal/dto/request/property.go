package request

type CreatePropertyRequest struct {
	Name               string `json:"name" validate:"required,min=1,max=150"`
	City               string `json:"city" validate:"required,min=1,max=100"`
	CancellationPolicy string `json:"cancellation_policy" validate:"required,oneof=flexible moderate strict"`
	Currency           string `json:"currency" validate:"required,iso4217"`
}

type AddPropertyAdminRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}
