package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/internal/data/repository"
	"rental-booking/internal/dto/response"
	"rental-booking/pkg/apperror"
	"rental-booking/pkg/storage"
	"rental-booking/pkg/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UploadDocumentInput struct {
	FileName     string
	DocumentType string
	Content      io.Reader
}

type RefundDocumentService interface {
	Upload(ctx context.Context, actor Actor, refundID uuid.UUID, in UploadDocumentInput) (*response.RefundDocumentResponse, error)
	List(ctx context.Context, actor Actor, refundID uuid.UUID) ([]response.RefundDocumentResponse, error)
	Download(ctx context.Context, actor Actor, refundID, documentID uuid.UUID) (*response.DocumentDownloadResponse, error)
	Delete(ctx context.Context, actor Actor, refundID, documentID uuid.UUID) error
	Verify(ctx context.Context, actor Actor, refundID, documentID uuid.UUID) (*response.RefundDocumentResponse, error)
}

type refundDocumentService struct {
	repo    *repository.Repository
	access  accessChecker
	storage storage.Storage
	config  utils.DocumentConfig
	now     func() time.Time
	log     *zap.Logger
}

func NewRefundDocumentService(repo *repository.Repository, store storage.Storage, config utils.DocumentConfig, log *zap.Logger) RefundDocumentService {
	log = log.With(zap.String("service", "refund_document"))
	return &refundDocumentService{
		repo:    repo,
		access:  accessChecker{repo: repo, log: log},
		storage: store,
		config:  config,
		now:     time.Now,
		log:     log,
	}
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func (s *refundDocumentService) Upload(ctx context.Context, actor Actor, refundID uuid.UUID, in UploadDocumentInput) (*response.RefundDocumentResponse, error) {
	docType := entity.DocumentType(in.DocumentType)
	if docType == "" {
		docType = entity.DocumentOther
	}
	switch docType {
	case entity.DocumentReceipt, entity.DocumentProofOfCancellation, entity.DocumentBankStatement, entity.DocumentOther:
	default:
		return nil, apperror.Validation("invalid document type", map[string]string{
			"document_type": "Must be one of: receipt, proof_of_cancellation, bank_statement, other",
		})
	}

	access, err := s.access.refund(ctx, actor, refundID)
	if err != nil {
		return nil, err
	}
	if !access.isGuest {
		return nil, apperror.Permission("only the requesting guest can upload documents")
	}
	if access.refund.Status.IsTerminal() {
		return nil, apperror.InvalidTransition(string(access.refund.Status), "document upload")
	}

	// one byte past the limit tells us the file is too large
	data, err := io.ReadAll(io.LimitReader(in.Content, s.config.MaxBytes+1))
	if err != nil {
		return nil, apperror.Validation("could not read uploaded file", nil)
	}
	if len(data) == 0 {
		return nil, apperror.Validation("file is empty", map[string]string{"file": "This field is required"})
	}
	if int64(len(data)) > s.config.MaxBytes {
		return nil, apperror.Validation("file is too large", map[string]string{
			"file": fmt.Sprintf("Maximum size is %d bytes", s.config.MaxBytes),
		})
	}

	mtype := mimetype.Detect(data)
	if !isAllowed(mtype, s.config.AllowedTypes) {
		return nil, apperror.Validation("file type is not allowed", map[string]string{
			"file": "Allowed types: " + strings.Join(s.config.AllowedTypes, ", "),
		})
	}

	now := s.now()
	doc := &entity.RefundDocument{
		BaseSimple:   entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		RefundID:     access.refund.ID,
		UploadedBy:   actor.UserID,
		FileName:     cleanFileName(in.FileName, mtype.Extension()),
		ContentType:  mtype.String(),
		SizeBytes:    int64(len(data)),
		DocumentType: docType,
	}
	doc.StorageKey = fmt.Sprintf("refunds/%s/%s-%s", access.refund.ID, doc.ID, doc.FileName)

	if err := s.storage.Upload(ctx, doc.StorageKey, bytes.NewReader(data), doc.SizeBytes, doc.ContentType); err != nil {
		s.log.Error("Failed to store document", zap.Error(err), zap.String("refund_id", refundID.String()))
		return nil, apperror.Internal("failed to store document", err)
	}

	if err := s.repo.RefundDocument.Create(ctx, doc); err != nil {
		s.log.Error("Failed to save document", zap.Error(err), zap.String("refund_id", refundID.String()))
		if delErr := s.storage.Delete(ctx, doc.StorageKey); delErr != nil {
			s.log.Warn("Failed to remove orphaned document", zap.Error(delErr), zap.String("key", doc.StorageKey))
		}
		return nil, apperror.Internal("failed to save document", err)
	}

	s.log.Info("Refund document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("refund_id", refundID.String()),
		zap.String("content_type", doc.ContentType),
	)

	resp := response.DocumentToResponse(doc, "")
	return &resp, nil
}

func (s *refundDocumentService) List(ctx context.Context, actor Actor, refundID uuid.UUID) ([]response.RefundDocumentResponse, error) {
	access, err := s.access.refund(ctx, actor, refundID)
	if err != nil {
		return nil, err
	}

	docs, err := s.repo.RefundDocument.FindByRefundID(ctx, access.refund.ID)
	if err != nil {
		s.log.Error("Failed to list documents", zap.Error(err), zap.String("refund_id", refundID.String()))
		return nil, apperror.Internal("failed to list documents", err)
	}

	out := make([]response.RefundDocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, response.DocumentToResponse(d, ""))
	}
	return out, nil
}

func (s *refundDocumentService) Download(ctx context.Context, actor Actor, refundID, documentID uuid.UUID) (*response.DocumentDownloadResponse, error) {
	_, doc, err := s.load(ctx, actor, refundID, documentID)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.PresignedURL(ctx, doc.StorageKey, s.config.URLTTL)
	if err != nil {
		s.log.Error("Failed to presign document", zap.Error(err), zap.String("document_id", documentID.String()))
		return nil, apperror.Internal("failed to create download link", err)
	}

	return &response.DocumentDownloadResponse{
		URL:       url,
		ExpiresAt: s.now().Add(s.config.URLTTL),
	}, nil
}

func (s *refundDocumentService) Delete(ctx context.Context, actor Actor, refundID, documentID uuid.UUID) error {
	access, doc, err := s.load(ctx, actor, refundID, documentID)
	if err != nil {
		return err
	}

	if doc.UploadedBy != actor.UserID {
		return apperror.Permission("only the uploader can delete a document")
	}
	if access.refund.Status.IsTerminal() {
		return apperror.InvalidTransition(string(access.refund.Status), "document delete")
	}
	if doc.IsVerified {
		return apperror.Conflict("verified documents cannot be deleted")
	}

	if err := s.repo.RefundDocument.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, repository.ErrDocumentVerified) {
			return apperror.Conflict("verified documents cannot be deleted")
		}
		s.log.Error("Failed to delete document", zap.Error(err), zap.String("document_id", documentID.String()))
		return apperror.Internal("failed to delete document", err)
	}

	if err := s.storage.Delete(ctx, doc.StorageKey); err != nil {
		s.log.Warn("Failed to remove stored document", zap.Error(err), zap.String("key", doc.StorageKey))
	}
	return nil
}

// Verify is idempotent: verifying a verified document returns it unchanged.
func (s *refundDocumentService) Verify(ctx context.Context, actor Actor, refundID, documentID uuid.UUID) (*response.RefundDocumentResponse, error) {
	access, doc, err := s.load(ctx, actor, refundID, documentID)
	if err != nil {
		return nil, err
	}
	if !access.isManager {
		return nil, apperror.Permission("only property administrators can verify documents")
	}

	if !doc.IsVerified {
		now := s.now()
		changed, err := s.repo.RefundDocument.Verify(ctx, doc.ID, actor.UserID, now)
		if err != nil {
			s.log.Error("Failed to verify document", zap.Error(err), zap.String("document_id", documentID.String()))
			return nil, apperror.Internal("failed to verify document", err)
		}
		if changed {
			doc.IsVerified = true
			doc.VerifiedBy = &actor.UserID
			doc.VerifiedAt = &now
		} else if doc, err = s.repo.RefundDocument.FindByID(ctx, doc.ID); err != nil || doc == nil {
			return nil, apperror.Internal("failed to reload document", err)
		}
	}

	resp := response.DocumentToResponse(doc, "")
	return &resp, nil
}

func (s *refundDocumentService) load(ctx context.Context, actor Actor, refundID, documentID uuid.UUID) (*refundAccess, *entity.RefundDocument, error) {
	access, err := s.access.refund(ctx, actor, refundID)
	if err != nil {
		return nil, nil, err
	}

	doc, err := s.repo.RefundDocument.FindByID(ctx, documentID)
	if err != nil {
		s.log.Error("Failed to load document", zap.Error(err), zap.String("document_id", documentID.String()))
		return nil, nil, apperror.Internal("failed to load document", err)
	}
	if doc == nil || doc.RefundID != access.refund.ID {
		return nil, nil, apperror.NotFound("document", documentID.String())
	}
	return access, doc, nil
}

// isAllowed matches the detected type or one of its aliases.
func isAllowed(mtype *mimetype.MIME, allowed []string) bool {
	for _, a := range allowed {
		if mtype.Is(a) {
			return true
		}
	}
	return false
}

func cleanFileName(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Trim(unsafeFileChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "document" + ext
	}
	if len(base) > 100 {
		base = base[len(base)-100:]
	}
	return base
}
