package repository

import (
	"context"
	"fmt"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RefundCommentRepository interface {
	Create(ctx context.Context, comment *entity.RefundComment) error
	FindByRefundID(ctx context.Context, refundID uuid.UUID, includeInternal bool) ([]*entity.RefundComment, error)
}

type refundCommentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRefundCommentRepository(db database.PgxIface, log *zap.Logger) RefundCommentRepository {
	return &refundCommentRepository{
		db:  db,
		log: log.With(zap.String("repository", "refund_comment")),
	}
}

func (r *refundCommentRepository) Create(ctx context.Context, comment *entity.RefundComment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refund_comments (id, refund_id, author_id, body, is_internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		comment.ID,
		comment.RefundID,
		comment.AuthorID,
		comment.Body,
		comment.IsInternal,
		comment.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create refund comment", zap.Error(err))
		return fmt.Errorf("create refund comment: %w", err)
	}
	return nil
}

func (r *refundCommentRepository) FindByRefundID(ctx context.Context, refundID uuid.UUID, includeInternal bool) ([]*entity.RefundComment, error) {
	query := `
		SELECT id, refund_id, author_id, body, is_internal, created_at
		FROM refund_comments
		WHERE refund_id = $1 AND ($2 OR is_internal = FALSE)
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, refundID, includeInternal)
	if err != nil {
		return nil, fmt.Errorf("find comments for refund %s: %w", refundID, err)
	}
	defer rows.Close()

	var comments []*entity.RefundComment
	for rows.Next() {
		var c entity.RefundComment
		if err := rows.Scan(&c.ID, &c.RefundID, &c.AuthorID, &c.Body, &c.IsInternal, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan refund comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
