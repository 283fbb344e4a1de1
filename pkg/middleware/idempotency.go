package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"rental-booking/pkg/cache"
	"rental-booking/pkg/utils"

	"go.uber.org/zap"
)

const IdempotencyHeader = "Idempotency-Key"

type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated POST carrying an
// Idempotency-Key. Keys are scoped per user, method and path. Responses with
// a 5xx status are not stored so the client may retry.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.Header.Get(IdempotencyHeader)
			if r.Method != http.MethodPost || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(clientKey) > 255 {
				utils.ResponseBadRequest(w, "Idempotency-Key is too long", nil)
				return
			}

			key := idempotencyKey(r, clientKey)
			ctx := r.Context()

			reserved, err := store.Reserve(ctx, key, ttl)
			if err != nil {
				// store outage degrades to non-idempotent handling
				logger.Warn("Idempotency reserve failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if !reserved {
				stored, err := store.Load(ctx, key)
				if err != nil {
					logger.Error("Idempotency load failed", zap.Error(err))
					utils.ResponseInternalError(w, "Internal server error")
					return
				}
				if stored == nil || stored.Pending {
					utils.ResponseConflict(w, "A request with this Idempotency-Key is still in progress")
					return
				}

				if stored.ContentType != "" {
					w.Header().Set("Content-Type", stored.ContentType)
				}
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(stored.Status)
				w.Write(stored.Body)
				return
			}

			rw := &recordingWriter{ResponseWriter: w}
			defer func() {
				if rec := recover(); rec != nil {
					store.Release(ctx, key)
					panic(rec)
				}
			}()

			next.ServeHTTP(rw, r)

			status := rw.status
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				if err := store.Release(ctx, key); err != nil {
					logger.Warn("Idempotency release failed", zap.Error(err))
				}
				return
			}

			err = store.Save(ctx, key, cache.StoredResponse{
				Status:      status,
				ContentType: rw.Header().Get("Content-Type"),
				Body:        rw.body.Bytes(),
			}, ttl)
			if err != nil {
				logger.Warn("Idempotency save failed", zap.Error(err))
			}
		})
	}
}

func idempotencyKey(r *http.Request, clientKey string) string {
	owner := "anonymous"
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		owner = userID.String()
	}
	sum := sha256.Sum256([]byte(owner + "|" + r.Method + "|" + r.URL.Path + "|" + clientKey))
	return hex.EncodeToString(sum[:])
}
