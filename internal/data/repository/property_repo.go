package repository

import (
	"context"
	"errors"
	"fmt"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PropertyRepository interface {
	// Create stores the property and lists its owner as the first admin.
	Create(ctx context.Context, property *entity.Property) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error)
	AddAdmin(ctx context.Context, admin *entity.PropertyAdmin) error
	IsAdmin(ctx context.Context, propertyID, userID uuid.UUID) (bool, error)
	FindAdminIDs(ctx context.Context, propertyID uuid.UUID) ([]uuid.UUID, error)
}

type propertyRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPropertyRepository(db database.PgxIface, log *zap.Logger) PropertyRepository {
	return &propertyRepository{
		db:  db,
		log: log.With(zap.String("repository", "property")),
	}
}

func (r *propertyRepository) Create(ctx context.Context, property *entity.Property) error {
	err := database.WithTx(ctx, r.db, func(q database.Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO properties (id, owner_id, name, city, cancellation_policy, currency, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			property.ID,
			property.OwnerID,
			property.Name,
			property.City,
			property.CancellationPolicy,
			property.Currency,
			property.CreatedAt,
			property.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert property: %w", err)
		}

		_, err = q.Exec(ctx, `
			INSERT INTO property_admins (property_id, user_id, created_at)
			VALUES ($1, $2, $3)`,
			property.ID, property.OwnerID, property.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert property owner admin: %w", err)
		}
		return nil
	})
	if err != nil {
		r.log.Error("Failed to create property", zap.Error(err), zap.String("owner_id", property.OwnerID.String()))
		return err
	}
	return nil
}

func (r *propertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Property, error) {
	query := `
		SELECT id, owner_id, name, city, cancellation_policy, currency, created_at, updated_at
		FROM properties
		WHERE id = $1
	`

	var p entity.Property
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.City,
		&p.CancellationPolicy,
		&p.Currency,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find property by ID %s: %w", id, err)
	}
	return &p, nil
}

// AddAdmin is a no-op when the user is already listed.
func (r *propertyRepository) AddAdmin(ctx context.Context, admin *entity.PropertyAdmin) error {
	query := `
		INSERT INTO property_admins (property_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (property_id, user_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, admin.PropertyID, admin.UserID, admin.CreatedAt); err != nil {
		return fmt.Errorf("add property admin: %w", err)
	}
	return nil
}

func (r *propertyRepository) IsAdmin(ctx context.Context, propertyID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM property_admins WHERE property_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, propertyID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check property admin: %w", err)
	}
	return exists, nil
}

func (r *propertyRepository) FindAdminIDs(ctx context.Context, propertyID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM property_admins WHERE property_id = $1 ORDER BY created_at`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("find property admins: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan property admin: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
