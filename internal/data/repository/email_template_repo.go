package repository

import (
	"context"
	"errors"
	"fmt"

	"rental-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var ErrTemplateNotFound = errors.New("email template not found")

// EmailTemplateRepository is the template store behind the primary mail provider.
type EmailTemplateRepository interface {
	LookupTemplate(ctx context.Context, key string) (subject, body string, err error)
}

type emailTemplateRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEmailTemplateRepository(db database.PgxIface, log *zap.Logger) EmailTemplateRepository {
	return &emailTemplateRepository{
		db:  db,
		log: log.With(zap.String("repository", "email_template")),
	}
}

func (r *emailTemplateRepository) LookupTemplate(ctx context.Context, key string) (string, string, error) {
	var subject, body string
	err := r.db.QueryRow(ctx,
		`SELECT subject, html_body FROM email_templates WHERE key = $1 AND is_active`, key,
	).Scan(&subject, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", fmt.Errorf("%w: %s", ErrTemplateNotFound, key)
	}
	if err != nil {
		return "", "", fmt.Errorf("lookup email template %s: %w", key, err)
	}
	return subject, body, nil
}
