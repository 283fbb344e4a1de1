package response

import (
	"time"

	"rental-booking/internal/data/entity"
)

type PropertyResponse struct {
	ID                 string                    `json:"id"`
	OwnerID            string                    `json:"owner_id"`
	Name               string                    `json:"name"`
	City               string                    `json:"city"`
	CancellationPolicy entity.CancellationPolicy `json:"cancellation_policy"`
	Currency           string                    `json:"currency"`
	AdminIDs           []string                  `json:"admin_ids,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
}

func PropertyToResponse(p *entity.Property) PropertyResponse {
	return PropertyResponse{
		ID:                 p.ID.String(),
		OwnerID:            p.OwnerID.String(),
		Name:               p.Name,
		City:               p.City,
		CancellationPolicy: p.CancellationPolicy,
		Currency:           p.Currency,
		CreatedAt:          p.CreatedAt,
	}
}
