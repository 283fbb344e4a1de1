package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var ErrDocumentVerified = errors.New("document already verified")

type RefundDocumentRepository interface {
	Create(ctx context.Context, doc *entity.RefundDocument) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RefundDocument, error)
	FindByRefundID(ctx context.Context, refundID uuid.UUID) ([]*entity.RefundDocument, error)
	// Delete removes an unverified document; a verified one yields ErrDocumentVerified.
	Delete(ctx context.Context, id uuid.UUID) error
	// Verify reports false when the document was already verified.
	Verify(ctx context.Context, id, verifiedBy uuid.UUID, at time.Time) (bool, error)
}

type refundDocumentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRefundDocumentRepository(db database.PgxIface, log *zap.Logger) RefundDocumentRepository {
	return &refundDocumentRepository{
		db:  db,
		log: log.With(zap.String("repository", "refund_document")),
	}
}

const documentColumns = `id, refund_id, uploaded_by, file_name, content_type, size_bytes, storage_key,
	document_type, is_verified, verified_by, verified_at, created_at`

func scanDocument(row pgx.Row) (*entity.RefundDocument, error) {
	var d entity.RefundDocument
	err := row.Scan(
		&d.ID,
		&d.RefundID,
		&d.UploadedBy,
		&d.FileName,
		&d.ContentType,
		&d.SizeBytes,
		&d.StorageKey,
		&d.DocumentType,
		&d.IsVerified,
		&d.VerifiedBy,
		&d.VerifiedAt,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *refundDocumentRepository) Create(ctx context.Context, doc *entity.RefundDocument) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refund_documents (id, refund_id, uploaded_by, file_name, content_type, size_bytes,
		                              storage_key, document_type, is_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9)`,
		doc.ID,
		doc.RefundID,
		doc.UploadedBy,
		doc.FileName,
		doc.ContentType,
		doc.SizeBytes,
		doc.StorageKey,
		doc.DocumentType,
		doc.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create refund document",
			zap.Error(err),
			zap.String("refund_id", doc.RefundID.String()),
		)
		return fmt.Errorf("create refund document: %w", err)
	}
	return nil
}

func (r *refundDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RefundDocument, error) {
	doc, err := scanDocument(r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM refund_documents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find refund document %s: %w", id, err)
	}
	return doc, nil
}

func (r *refundDocumentRepository) FindByRefundID(ctx context.Context, refundID uuid.UUID) ([]*entity.RefundDocument, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+documentColumns+` FROM refund_documents WHERE refund_id = $1 ORDER BY created_at`, refundID)
	if err != nil {
		return nil, fmt.Errorf("find documents for refund %s: %w", refundID, err)
	}
	defer rows.Close()

	var docs []*entity.RefundDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refund document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *refundDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM refund_documents WHERE id = $1 AND is_verified = FALSE`, id)
	if err != nil {
		return fmt.Errorf("delete refund document %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrDocumentVerified
	}
	return nil
}

func (r *refundDocumentRepository) Verify(ctx context.Context, id, verifiedBy uuid.UUID, at time.Time) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE refund_documents
		SET is_verified = TRUE, verified_by = $2, verified_at = $3
		WHERE id = $1 AND is_verified = FALSE`,
		id, verifiedBy, at,
	)
	if err != nil {
		return false, fmt.Errorf("verify refund document %s: %w", id, err)
	}
	return result.RowsAffected() > 0, nil
}
