package adaptor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rental-booking/internal/dto/request"
	"rental-booking/internal/dto/response"
	"rental-booking/internal/usecase"
	"rental-booking/pkg/apperror"
	"rental-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubRefunds implements only what a test sets; anything else panics.
type stubRefunds struct {
	usecase.RefundService
	create  func(ctx context.Context, actor usecase.Actor, bookingID uuid.UUID, req *request.CreateRefundRequest) (*response.RefundResponse, error)
	process func(ctx context.Context, actor usecase.Actor, refundID uuid.UUID, in *request.ProcessInput) (*response.RefundResponse, error)
	reject  func(ctx context.Context, actor usecase.Actor, refundID uuid.UUID, in *request.RejectInput) (*response.RefundResponse, error)
	listAll func(ctx context.Context, actor usecase.Actor, req *request.RefundListRequest) (*response.PaginatedResponse[response.RefundResponse], error)
}

func (s *stubRefunds) Create(ctx context.Context, actor usecase.Actor, bookingID uuid.UUID, req *request.CreateRefundRequest) (*response.RefundResponse, error) {
	return s.create(ctx, actor, bookingID, req)
}

func (s *stubRefunds) Process(ctx context.Context, actor usecase.Actor, refundID uuid.UUID, in *request.ProcessInput) (*response.RefundResponse, error) {
	return s.process(ctx, actor, refundID, in)
}

func (s *stubRefunds) Reject(ctx context.Context, actor usecase.Actor, refundID uuid.UUID, in *request.RejectInput) (*response.RefundResponse, error) {
	return s.reject(ctx, actor, refundID, in)
}

func (s *stubRefunds) ListAll(ctx context.Context, actor usecase.Actor, req *request.RefundListRequest) (*response.PaginatedResponse[response.RefundResponse], error) {
	return s.listAll(ctx, actor, req)
}

type stubDocuments struct {
	usecase.RefundDocumentService
	upload func(ctx context.Context, actor usecase.Actor, refundID uuid.UUID, in usecase.UploadDocumentInput) (*response.RefundDocumentResponse, error)
}

func (s *stubDocuments) Upload(ctx context.Context, actor usecase.Actor, refundID uuid.UUID, in usecase.UploadDocumentInput) (*response.RefundDocumentResponse, error) {
	return s.upload(ctx, actor, refundID, in)
}

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

var testActor = usecase.Actor{UserID: uuid.New(), Role: "guest"}

func refundRouter(refunds usecase.RefundService, docs usecase.RefundDocumentService) http.Handler {
	log := zap.NewNop()
	refundHandler := NewRefundHandler(refunds, log)
	docHandler := NewRefundDocumentHandler(docs, 1<<10, log)

	r := chi.NewRouter()
	r.Post("/api/bookings/{id}/refunds", refundHandler.CreateRefund)
	r.Post("/api/refunds/{id}/process", refundHandler.Process)
	r.Post("/api/refunds/{id}/reject", refundHandler.Reject)
	r.Get("/api/admin/refunds", refundHandler.ListAll)
	r.Post("/api/refunds/{id}/documents", docHandler.Upload)
	return r
}

func doRequest(router http.Handler, req *http.Request, actor *usecase.Actor) *httptest.ResponseRecorder {
	if actor != nil {
		req = req.WithContext(utils.SetUserContext(req.Context(), actor.UserID, string(actor.Role)))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateRefundPassesActorAndBody(t *testing.T) {
	bookingID := uuid.New()
	refunds := &stubRefunds{
		create: func(ctx context.Context, actor usecase.Actor, id uuid.UUID, req *request.CreateRefundRequest) (*response.RefundResponse, error) {
			assert.Equal(t, testActor, actor)
			assert.Equal(t, bookingID, id)
			assert.Equal(t, "change_of_plans", req.ReasonCode)
			assert.Equal(t, "250.5", req.RequestedAmount.String())
			return &response.RefundResponse{ID: "r-1", Status: "requested"}, nil
		},
	}

	body := `{"reason_code":"change_of_plans","requested_amount":"250.50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/"+bookingID.String()+"/refunds", strings.NewReader(body))
	rec := doRequest(refundRouter(refunds, nil), req, &testActor)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Status)
	assert.Contains(t, string(env.Data), `"status":"requested"`)
}

func TestCreateRefundRequiresAuthentication(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/"+uuid.NewString()+"/refunds", strings.NewReader(`{}`))
	rec := doRequest(refundRouter(&stubRefunds{}, nil), req, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateRefundRejectsBadInput(t *testing.T) {
	router := refundRouter(&stubRefunds{}, nil)

	rec := doRequest(router, httptest.NewRequest(http.MethodPost, "/api/bookings/not-a-uuid/refunds", strings.NewReader(`{}`)), &testActor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Must be a valid UUID", decodeEnvelope(t, rec).Errors["id"])

	rec = doRequest(router, httptest.NewRequest(http.MethodPost, "/api/bookings/"+uuid.NewString()+"/refunds", strings.NewReader(`{"reason_code":`)), &testActor)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServiceErrorsMapToStatusAndCode(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperror.Validation("validation failed", map[string]string{"requested_amount": "Too much"}), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"lock", apperror.RefundLocked("b-1"), http.StatusConflict, "REFUND_LOCK_ACTIVE"},
		{"transition", apperror.InvalidTransition("completed", "rejected"), http.StatusBadRequest, "INVALID_STATE_TRANSITION"},
		{"permission", apperror.Permission("nope"), http.StatusForbidden, "PERMISSION_DENIED"},
		{"not found", apperror.NotFound("refund", "x"), http.StatusNotFound, "NOT_FOUND"},
		{"internal", apperror.Internal("failed to reject refund", errors.New("pq: secret detail")), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			refunds := &stubRefunds{
				reject: func(ctx context.Context, actor usecase.Actor, id uuid.UUID, in *request.RejectInput) (*response.RefundResponse, error) {
					return nil, tc.err
				},
			}
			req := httptest.NewRequest(http.MethodPost, "/api/refunds/"+uuid.NewString()+"/reject", strings.NewReader(`{"customer_notes":"not eligible here"}`))
			rec := doRequest(refundRouter(refunds, nil), req, &testActor)

			assert.Equal(t, tc.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Status)
			assert.Equal(t, tc.code, env.Code)
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}

	t.Run("validation fields are returned", func(t *testing.T) {
		refunds := &stubRefunds{
			reject: func(ctx context.Context, actor usecase.Actor, id uuid.UUID, in *request.RejectInput) (*response.RefundResponse, error) {
				return nil, cases[0].err
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/api/refunds/"+uuid.NewString()+"/reject", strings.NewReader(`{}`))
		rec := doRequest(refundRouter(refunds, nil), req, &testActor)

		assert.Equal(t, "Too much", decodeEnvelope(t, rec).Errors["requested_amount"])
	})

	t.Run("untyped errors become 500", func(t *testing.T) {
		refunds := &stubRefunds{
			reject: func(ctx context.Context, actor usecase.Actor, id uuid.UUID, in *request.RejectInput) (*response.RefundResponse, error) {
				return nil, errors.New("connection reset")
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/api/refunds/"+uuid.NewString()+"/reject", strings.NewReader(`{}`))
		rec := doRequest(refundRouter(refunds, nil), req, &testActor)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})
}

func TestProcessAcceptsEmptyBody(t *testing.T) {
	refunds := &stubRefunds{
		process: func(ctx context.Context, actor usecase.Actor, id uuid.UUID, in *request.ProcessInput) (*response.RefundResponse, error) {
			assert.Nil(t, in.InternalNotes)
			return &response.RefundResponse{ID: id.String(), Status: "failed"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/refunds/"+uuid.NewString()+"/process", http.NoBody)
	rec := doRequest(refundRouter(refunds, nil), req, &testActor)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"failed"`)
}

func TestListAllReadsQuery(t *testing.T) {
	refunds := &stubRefunds{
		listAll: func(ctx context.Context, actor usecase.Actor, req *request.RefundListRequest) (*response.PaginatedResponse[response.RefundResponse], error) {
			require.NotNil(t, req.Status)
			assert.Equal(t, "under_review", *req.Status)
			assert.Equal(t, 2, req.Page)
			assert.Equal(t, 5, req.PerPage)
			return &response.PaginatedResponse[response.RefundResponse]{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/refunds?status=under_review&page=2&per_page=5", nil)
	rec := doRequest(refundRouter(refunds, nil), req, &testActor)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func multipartBody(t *testing.T, fileName string, content []byte, docType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_type", docType))
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadDocumentStreamsFile(t *testing.T) {
	refundID := uuid.New()
	docs := &stubDocuments{
		upload: func(ctx context.Context, actor usecase.Actor, id uuid.UUID, in usecase.UploadDocumentInput) (*response.RefundDocumentResponse, error) {
			assert.Equal(t, refundID, id)
			assert.Equal(t, "receipt.pdf", in.FileName)
			assert.Equal(t, "receipt", in.DocumentType)
			data, err := io.ReadAll(in.Content)
			require.NoError(t, err)
			assert.Equal(t, "%PDF-1.4 test", string(data))
			return &response.RefundDocumentResponse{ID: "d-1", FileName: in.FileName}, nil
		},
	}

	body, contentType := multipartBody(t, "receipt.pdf", []byte("%PDF-1.4 test"), "receipt")
	req := httptest.NewRequest(http.MethodPost, "/api/refunds/"+refundID.String()+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(refundRouter(nil, docs), req, &testActor)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUploadDocumentRequiresFile(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("document_type", "receipt"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/refunds/"+uuid.NewString()+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doRequest(refundRouter(nil, &stubDocuments{}), req, &testActor)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This field is required", decodeEnvelope(t, rec).Errors["file"])
}

func TestUploadDocumentRejectsOversizedBody(t *testing.T) {
	body, contentType := multipartBody(t, "big.pdf", bytes.Repeat([]byte("x"), 3<<20), "receipt")
	req := httptest.NewRequest(http.MethodPost, "/api/refunds/"+uuid.NewString()+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(refundRouter(nil, &stubDocuments{}), req, &testActor)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
