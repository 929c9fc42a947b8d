package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolride-backend/pkg/auth"
)

func newAuthValidator(t *testing.T) *auth.JWTValidator {
	t.Helper()
	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     "test-secret",
		Issuer:        "schoolride",
	})
	require.NoError(t, err)
	return validator
}

// newAuthedHandler wraps a handler that records the user context it was
// invoked with.
func newAuthedHandler(t *testing.T, trustGateway bool) (http.Handler, *auth.UserContext) {
	t.Helper()

	captured := &auth.UserContext{}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := auth.GetUserFromContext(r.Context()); ok {
			*captured = *user
		}
		w.WriteHeader(http.StatusOK)
	})

	mw := Authenticate(newAuthValidator(t), trustGateway, zap.NewNop())
	return mw(inner), captured
}

func TestAuthenticateBearerToken(t *testing.T) {
	handler, captured := newAuthedHandler(t, false)

	token, err := newAuthValidator(t).GenerateToken("user-1", "user@example.com", []string{"admin"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", captured.UserID)
	assert.Equal(t, []string{"admin"}, captured.Roles)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	handler, _ := newAuthedHandler(t, false)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Gateway headers are only trusted when the server runs behind the API
// Gateway authorizer. A direct caller setting them must still present a
// valid bearer token.
func TestAuthenticateIgnoresGatewayHeadersWhenUntrusted(t *testing.T) {
	handler, _ := newAuthedHandler(t, false)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("X-API-Gateway-Authorized", "true")
	req.Header.Set("X-User-ID", "intruder")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateAcceptsGatewayHeadersWhenTrusted(t *testing.T) {
	handler, captured := newAuthedHandler(t, true)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("X-API-Gateway-Authorized", "true")
	req.Header.Set("X-User-ID", "user-2")
	req.Header.Set("X-User-Email", "user2@example.com")
	req.Header.Set("X-User-Roles", "admin,dispatcher")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-2", captured.UserID)
	assert.Equal(t, "user2@example.com", captured.Email)
	assert.Equal(t, []string{"admin", "dispatcher"}, captured.Roles)
}

func TestAuthenticateRejectsGatewayHeadersWithoutUser(t *testing.T) {
	handler, _ := newAuthedHandler(t, true)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("X-API-Gateway-Authorized", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
