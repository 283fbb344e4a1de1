package adaptor

import (
	"net/http"

	"rental-booking/internal/usecase"
	"rental-booking/pkg/utils"

	"go.uber.org/zap"
)

type CreditMemoHandler struct {
	service usecase.CreditMemoService
	log     *zap.Logger
}

func NewCreditMemoHandler(service usecase.CreditMemoService, log *zap.Logger) *CreditMemoHandler {
	return &CreditMemoHandler{
		service: service,
		log:     log.With(zap.String("handler", "credit_memo")),
	}
}

// GetCreditMemo handles GET /api/credit-memos/{id}
func (h *CreditMemoHandler) GetCreditMemo(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	memoID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	memo, err := h.service.Get(r.Context(), actor, memoID)
	if err != nil {
		handleServiceError(w, h.log, err, "get credit memo")
		return
	}

	utils.ResponseSuccess(w, "success", memo)
}

// GetByRefund handles GET /api/refunds/{id}/credit-memo
func (h *CreditMemoHandler) GetByRefund(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	refundID, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	memo, err := h.service.GetByRefund(r.Context(), actor, refundID)
	if err != nil {
		handleServiceError(w, h.log, err, "get refund credit memo")
		return
	}

	utils.ResponseSuccess(w, "success", memo)
}
