package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*entity.Notification) error
	FindByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	CountByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error
}

type notificationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewNotificationRepository(db database.PgxIface, log *zap.Logger) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "notification")),
	}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*entity.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	return database.WithTx(ctx, r.db, func(q database.Querier) error {
		for _, n := range notifications {
			_, err := q.Exec(ctx, `
				INSERT INTO notifications (id, user_id, refund_id, kind, title, body, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				n.ID, n.UserID, n.RefundID, n.Kind, n.Title, n.Body, n.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert notification for user %s: %w", n.UserID, err)
			}
		}
		return nil
	})
}

func (r *notificationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, refund_id, kind, title, body, read_at, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("find notifications for user %s: %w", userID, err)
	}
	defer rows.Close()

	var items []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.RefundID, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}

func (r *notificationRepository) CountByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND (NOT $2 OR read_at IS NULL)`,
		userID, unreadOnly,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count notifications for user %s: %w", userID, err)
	}
	return total, nil
}

// MarkRead keeps the first read timestamp.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	result, err := r.db.Exec(ctx, `
		UPDATE notifications
		SET read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2`,
		id, userID, at,
	)
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
