package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rental-booking/internal/data/entity"
	"rental-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubSessions struct {
	sessions map[string]*entity.Session
}

func (s *stubSessions) Create(ctx context.Context, session *entity.Session) error { return nil }

func (s *stubSessions) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	return s.sessions[token], nil
}

func (s *stubSessions) Revoke(ctx context.Context, token string, at time.Time) error { return nil }

type stubUsers struct {
	users map[uuid.UUID]*entity.User
}

func (s *stubUsers) Create(ctx context.Context, user *entity.User) error { return nil }

func (s *stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return s.users[id], nil
}

func (s *stubUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, nil
}

func (s *stubUsers) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return nil, nil
}

func (s *stubUsers) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	return nil, nil
}

type authFixture struct {
	sessions *stubSessions
	users    *stubUsers
	token    string
	user     *entity.User
}

func newAuthFixture(role entity.UserRole, active bool) *authFixture {
	user := &entity.User{Role: role, IsActive: active, Username: "sam"}
	user.ID = uuid.New()
	token := uuid.New()

	return &authFixture{
		sessions: &stubSessions{sessions: map[string]*entity.Session{
			token.String(): {UserID: user.ID, Token: token, ExpiresAt: time.Now().Add(time.Hour)},
		}},
		users: &stubUsers{users: map[uuid.UUID]*entity.User{user.ID: user}},
		token: token.String(),
		user:  user,
	}
}

func (f *authFixture) serve(authHeader string, next http.Handler) *httptest.ResponseRecorder {
	handler := AuthSession(f.sessions, f.users, zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthSessionSetsUserAndRole(t *testing.T) {
	f := newAuthFixture(entity.RoleHost, true)

	var gotID uuid.UUID
	var gotRole, gotToken string
	rec := f.serve("Bearer "+f.token, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = utils.GetUserIDFromContext(r.Context())
		gotRole, _ = utils.GetRoleFromContext(r.Context())
		gotToken, _ = utils.GetTokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, f.user.ID, gotID)
	assert.Equal(t, "host", gotRole)
	assert.Equal(t, f.token, gotToken)
}

func TestAuthSessionAcceptsLowercaseScheme(t *testing.T) {
	f := newAuthFixture(entity.RoleGuest, true)

	rec := f.serve("bearer  "+f.token, okHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthSessionRejects(t *testing.T) {
	f := newAuthFixture(entity.RoleGuest, true)

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic " + f.token,
		"no token":       "Bearer",
		"unknown token":  "Bearer " + uuid.NewString(),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := f.serve(header, okHandler())
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthSessionRejectsInactiveUser(t *testing.T) {
	f := newAuthFixture(entity.RoleGuest, false)

	rec := f.serve("Bearer "+f.token, okHandler())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	guard := RequireRole(zap.NewNop(), entity.RoleAdmin)(okHandler())

	serve := func(role string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/refunds", nil)
		req = req.WithContext(utils.SetUserContext(req.Context(), uuid.New(), role))
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve("admin"))
	assert.Equal(t, http.StatusForbidden, serve("host"))

	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/refunds", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
