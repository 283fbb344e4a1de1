package entity

import (
	"time"

	"github.com/google/uuid"
)

type CancellationPolicy string

const (
	PolicyFlexible CancellationPolicy = "flexible"
	PolicyModerate CancellationPolicy = "moderate"
	PolicyStrict   CancellationPolicy = "strict"
)

type Property struct {
	BaseNoDelete
	OwnerID            uuid.UUID          `db:"owner_id"`
	Name               string             `db:"name"`
	City               string             `db:"city"`
	CancellationPolicy CancellationPolicy `db:"cancellation_policy"`
	Currency           string             `db:"currency"`
}

// PropertyAdmin lists a user allowed to manage a property's bookings and refunds.
type PropertyAdmin struct {
	PropertyID uuid.UUID `db:"property_id"`
	UserID     uuid.UUID `db:"user_id"`
	CreatedAt  time.Time `db:"created_at"`
}
