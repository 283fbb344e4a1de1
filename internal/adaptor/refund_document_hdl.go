package adaptor

import (
	"errors"
	"net/http"

	"rental-booking/internal/usecase"
	"rental-booking/pkg/utils"

	"go.uber.org/zap"
)

// multipart framing allowance on top of the file limit
const multipartOverhead = 1 << 20

type RefundDocumentHandler struct {
	service  usecase.RefundDocumentService
	maxBytes int64
	log      *zap.Logger
}

func NewRefundDocumentHandler(service usecase.RefundDocumentService, maxBytes int64, log *zap.Logger) *RefundDocumentHandler {
	return &RefundDocumentHandler{
		service:  service,
		maxBytes: maxBytes,
		log:      log.With(zap.String("handler", "refund_document")),
	}
}

// Upload handles POST /api/refunds/{id}/documents (multipart: file, document_type)
func (h *RefundDocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.ResponseBadRequest(w, "file is too large", map[string]string{"file": "File exceeds the upload limit"})
			return
		}
		utils.ResponseBadRequest(w, "Invalid multipart form", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.ResponseBadRequest(w, "Validation failed", map[string]string{"file": "This field is required"})
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(r.Context(), actor, refundID, usecase.UploadDocumentInput{
		FileName:     header.Filename,
		DocumentType: r.FormValue("document_type"),
		Content:      file,
	})
	if err != nil {
		handleServiceError(w, h.log, err, "upload refund document")
		return
	}

	utils.ResponseCreated(w, "Document uploaded", doc)
}

// List handles GET /api/refunds/{id}/documents
func (h *RefundDocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	docs, err := h.service.List(r.Context(), actor, refundID)
	if err != nil {
		handleServiceError(w, h.log, err, "list refund documents")
		return
	}

	utils.ResponseSuccess(w, "success", docs)
}

// Download handles GET /api/refunds/{id}/documents/{docId}/download
func (h *RefundDocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	documentID, ok := urlUUID(w, r, "docId")
	if !ok {
		return
	}

	link, err := h.service.Download(r.Context(), actor, refundID, documentID)
	if err != nil {
		handleServiceError(w, h.log, err, "download refund document")
		return
	}

	utils.ResponseSuccess(w, "success", link)
}

// Delete handles DELETE /api/refunds/{id}/documents/{docId}
func (h *RefundDocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	documentID, ok := urlUUID(w, r, "docId")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, refundID, documentID); err != nil {
		handleServiceError(w, h.log, err, "delete refund document")
		return
	}

	utils.ResponseSuccess(w, "Document deleted", nil)
}

// Verify handles POST /api/refunds/{id}/documents/{docId}/verify
func (h *RefundDocumentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	documentID, ok := urlUUID(w, r, "docId")
	if !ok {
		return
	}

	doc, err := h.service.Verify(r.Context(), actor, refundID, documentID)
	if err != nil {
		handleServiceError(w, h.log, err, "verify refund document")
		return
	}

	utils.ResponseSuccess(w, "Document verified", doc)
}
