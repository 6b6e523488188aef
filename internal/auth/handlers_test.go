package auth

import (
	"WAGroups-Backend/internal/domain"
	"WAGroups-Backend/internal/repository/memory"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "test-admin-password"

func newTestAuthHandlers(t *testing.T) (*AuthHandlers, *memory.MemStorage) {
	t.Helper()

	storage := memory.New()
	jwtService := newTestJWTService(time.Minute)
	passwordService := NewPasswordServiceWithCost(bcrypt.MinCost)

	hash, err := passwordService.HashPassword(testPassword)
	require.NoError(t, err)
	require.NoError(t, storage.CreateAdmin(context.Background(), &domain.AdminUser{
		Username:     "admin",
		PasswordHash: hash,
		IsActive:     true,
	}))

	handlers := NewAuthHandlers(storage, jwtService, passwordService, time.Hour, zap.NewNop())
	return handlers, storage
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestLogin_Success(t *testing.T) {
	handlers, _ := newTestAuthHandlers(t)

	rr := postJSON(t, handlers.Login, LoginRequest{Username: "admin", Password: testPassword})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "admin", resp.Admin.Username)

	claims, err := handlers.jwtService.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.Admin.ID, claims.AdminID)
}

func TestLogin_CaseInsensitiveUsername(t *testing.T) {
	handlers, _ := newTestAuthHandlers(t)

	rr := postJSON(t, handlers.Login, LoginRequest{Username: "  ADMIN  ", Password: testPassword})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	handlers, _ := newTestAuthHandlers(t)

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{"wrong password", LoginRequest{Username: "admin", Password: "wrong"}},
		{"unknown user", LoginRequest{Username: "nobody", Password: testPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, handlers.Login, tt.req)
			require.Equal(t, http.StatusUnauthorized, rr.Code)

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			// The same code for both cases, no username probing.
			assert.Equal(t, "INVALID_CREDENTIALS", resp.Error)
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	handlers, _ := newTestAuthHandlers(t)

	rr := postJSON(t, handlers.Login, LoginRequest{Username: "admin"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	handlers, _ := newTestAuthHandlers(t)

	rr := postJSON(t, handlers.Login, LoginRequest{Username: "admin", Password: testPassword})
	require.Equal(t, http.StatusOK, rr.Code)

	var login AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&login))

	rr = postJSON(t, handlers.Refresh, RefreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusOK, rr.Code)

	var refreshed AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&refreshed))
	assert.NotEmpty(t, refreshed.RefreshToken)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The rotated-out token is single-use.
	rr = postJSON(t, handlers.Refresh, RefreshRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefresh_UnknownToken(t *testing.T) {
	handlers, _ := newTestAuthHandlers(t)

	rr := postJSON(t, handlers.Refresh, RefreshRequest{RefreshToken: "no-such-token"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "INVALID_TOKEN", resp.Error)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	handlers, storage := newTestAuthHandlers(t)

	expired := &domain.RefreshToken{
		AdminID:   1,
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, storage.SaveRefreshToken(context.Background(), expired))

	rr := postJSON(t, handlers.Refresh, RefreshRequest{RefreshToken: "expired-token"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	handlers, _ := newTestAuthHandlers(t)

	rr := postJSON(t, handlers.Login, LoginRequest{Username: "admin", Password: testPassword})
	require.Equal(t, http.StatusOK, rr.Code)

	var login AuthResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&login))

	rr = postJSON(t, handlers.Logout, RefreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = postJSON(t, handlers.Refresh, RefreshRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout_UnknownTokenIsIdempotent(t *testing.T) {
	handlers, _ := newTestAuthHandlers(t)

	rr := postJSON(t, handlers.Logout, RefreshRequest{RefreshToken: "never-issued"})
	assert.Equal(t, http.StatusNoContent, rr.Code)
}
