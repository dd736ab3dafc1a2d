package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petsitter/pkg/logger"
	"petsitter/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func captureActor(t *testing.T) (http.Handler, *model.Actor, *bool) {
	t.Helper()
	var got model.Actor
	var ok bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	return h, &got, &ok
}

func signToken(t *testing.T, secret, subject, role string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestIdentityHeaders(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
		wantActor  *model.Actor
	}{
		{name: "owner", userID: "owner-1", role: "owner", wantStatus: http.StatusNoContent, wantActor: &model.Actor{ID: "owner-1", Role: model.RoleOwner}},
		{name: "role is case insensitive", userID: "sitter-1", role: "Sitter", wantStatus: http.StatusNoContent, wantActor: &model.Actor{ID: "sitter-1", Role: model.RoleSitter}},
		{name: "anonymous passes through", wantStatus: http.StatusNoContent},
		{name: "unknown role", userID: "u1", role: "admin", wantStatus: http.StatusUnauthorized},
		{name: "role without id", role: "owner", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, got, ok := captureActor(t)
			h := Identity("", logger.Discard())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
			if tt.userID != "" {
				req.Header.Set(UserIDHeader, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(UserRoleHeader, tt.role)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantActor != nil {
				assert.True(t, *ok)
				assert.Equal(t, *tt.wantActor, *got)
			} else {
				assert.False(t, *ok)
			}
		})
	}
}

func TestIdentityJWT(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		next, got, ok := captureActor(t)
		h := Identity(testSecret, logger.Discard())(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "sitter-9", "sitter", time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, *ok)
		assert.Equal(t, model.Actor{ID: "sitter-9", Role: model.RoleSitter}, *got)
	})

	t.Run("headers are ignored when tokens are required", func(t *testing.T) {
		next, _, ok := captureActor(t)
		h := Identity(testSecret, logger.Discard())(next)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(UserIDHeader, "spoofed")
		req.Header.Set(UserRoleHeader, "owner")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, *ok)
	})

	rejected := []struct {
		name  string
		token string
	}{
		{"wrong secret", signToken(t, "another-secret-another-secret-xx", "u1", "owner", time.Now().Add(time.Hour))},
		{"expired", signToken(t, testSecret, "u1", "owner", time.Now().Add(-time.Minute))},
		{"bad role", signToken(t, testSecret, "u1", "root", time.Now().Add(time.Hour))},
		{"garbage", "not-a-jwt"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			next, _, _ := captureActor(t)
			h := Identity(testSecret, logger.Discard())(next)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "UNAUTHORIZED", body["code"])
		})
	}
}

func TestRequireActor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := RequireActor(req)
	assert.Error(t, err)

	req = req.WithContext(WithActor(req.Context(), model.Actor{ID: "o1", Role: model.RoleOwner}))
	actor, err := RequireActor(req)
	require.NoError(t, err)
	assert.Equal(t, "o1", actor.ID)
}
