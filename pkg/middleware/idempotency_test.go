package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"rental-booking/pkg/cache"
	"rental-booking/pkg/utils"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
)

type memoryIdempotency struct {
	mu      sync.Mutex
	entries map[string]cache.StoredResponse
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{entries: map[string]cache.StoredResponse{}}
}

func (m *memoryIdempotency) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return false, nil
	}
	m.entries[key] = cache.StoredResponse{Pending: true}
	return true, nil
}

func (m *memoryIdempotency) Load(ctx context.Context, key string) (*cache.StoredResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (m *memoryIdempotency) Save(ctx context.Context, key string, resp cache.StoredResponse, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = resp
	return nil
}

func (m *memoryIdempotency) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func TestIdempotency(t *testing.T) {
	Convey("Given the idempotency middleware in front of a counting handler", t, func() {
		store := newMemoryIdempotency()
		calls := 0
		status := http.StatusCreated
		handler := Idempotency(store, time.Hour, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			utils.ResponseError(w, status, "", "call", nil)
		}))

		userID := uuid.New()
		post := func(key, path string, user uuid.UUID) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
			if key != "" {
				req.Header.Set(IdempotencyHeader, key)
			}
			req = req.WithContext(utils.SetUserContext(req.Context(), user, "guest"))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec
		}

		Convey("A repeated key replays the first response", func() {
			first := post("abc", "/api/bookings/1/refunds", userID)
			second := post("abc", "/api/bookings/1/refunds", userID)

			So(calls, ShouldEqual, 1)
			So(second.Code, ShouldEqual, http.StatusCreated)
			So(second.Body.String(), ShouldEqual, first.Body.String())
			So(second.Header().Get("Idempotent-Replayed"), ShouldEqual, "true")
			So(second.Header().Get("Content-Type"), ShouldEqual, "application/json")
		})

		Convey("Keys are scoped per user and path", func() {
			post("abc", "/api/bookings/1/refunds", userID)
			post("abc", "/api/bookings/1/refunds", uuid.New())
			post("abc", "/api/bookings/2/refunds", userID)

			So(calls, ShouldEqual, 3)
		})

		Convey("Requests without a key are never cached", func() {
			post("", "/api/bookings/1/refunds", userID)
			post("", "/api/bookings/1/refunds", userID)

			So(calls, ShouldEqual, 2)
		})

		Convey("Server errors release the key for a retry", func() {
			status = http.StatusInternalServerError
			post("abc", "/api/bookings/1/refunds", userID)
			status = http.StatusCreated
			retry := post("abc", "/api/bookings/1/refunds", userID)

			So(calls, ShouldEqual, 2)
			So(retry.Code, ShouldEqual, http.StatusCreated)
		})

		Convey("A key still in flight is a conflict", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/bookings/1/refunds", nil)
			req.Header.Set(IdempotencyHeader, "abc")
			req = req.WithContext(utils.SetUserContext(req.Context(), userID, "guest"))
			_, err := store.Reserve(context.Background(), idempotencyKey(req, "abc"), time.Hour)
			So(err, ShouldBeNil)

			rec := post("abc", "/api/bookings/1/refunds", userID)

			So(calls, ShouldEqual, 0)
			So(rec.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("GET requests pass straight through", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/refunds/1", nil)
			req.Header.Set(IdempotencyHeader, "abc")
			handler.ServeHTTP(httptest.NewRecorder(), req)
			handler.ServeHTTP(httptest.NewRecorder(), req)

			So(calls, ShouldEqual, 2)
		})
	})
}
