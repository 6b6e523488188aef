package http

import (
	"WAGroups-Backend/internal/auth"
	"WAGroups-Backend/internal/config"
	"WAGroups-Backend/internal/domain"
	"WAGroups-Backend/internal/repository"
	"WAGroups-Backend/internal/repository/memory"
	"WAGroups-Backend/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testAdminPassword = "test-admin-password"

// testEnv wires the full route table against the in-memory storage.
type testEnv struct {
	server  *Server
	storage *memory.MemStorage
	jwt     *auth.JWTService
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	storage := memory.New()
	log := zap.NewNop()

	directory := service.NewDirectory(storage, &config.Directory{
		MinNameLength: 3,
		TrendingLimit: 20,
	})

	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:           []byte("test-secret"),
		AccessTokenDuration: time.Minute,
		Issuer:              "test",
	})
	passwordService := auth.NewPasswordServiceWithCost(bcrypt.MinCost)

	hash, err := passwordService.HashPassword(testAdminPassword)
	require.NoError(t, err)
	require.NoError(t, storage.CreateAdmin(context.Background(), &domain.AdminUser{
		Username:     "admin",
		PasswordHash: hash,
		IsActive:     true,
	}))

	server := NewServer(storage, directory, nil, jwtService, passwordService, time.Hour, []string{"*"}, log)
	return &testEnv{
		server:  server,
		storage: storage,
		jwt:     jwtService,
		handler: server.SetupRoutes(),
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	return doRequest(t, e.handler, method, path, body, headers)
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// failingStorage stands in for a lost database connection: the read and
// write paths behind the public group endpoints all fail.
type failingStorage struct {
	repository.Storage
	err error
}

func (s *failingStorage) SaveGroup(context.Context, *domain.Group) error { return s.err }

func (s *failingStorage) LinkExists(context.Context, string) (bool, error) { return false, s.err }

func (s *failingStorage) ListGroups(context.Context, repository.ListFilter) ([]*domain.Group, error) {
	return nil, s.err
}

func (s *failingStorage) ListTrending(context.Context, int) ([]*domain.Group, error) {
	return nil, s.err
}

// newStoreFailureEnv builds the route table on top of a storage whose group
// operations fail.
func newStoreFailureEnv(t *testing.T) http.Handler {
	t.Helper()

	broken := &failingStorage{
		Storage: memory.New(),
		err:     errors.New("connection refused"),
	}
	directory := service.NewDirectory(broken, &config.Directory{
		MinNameLength: 3,
		TrendingLimit: 20,
	})
	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:           []byte("test-secret"),
		AccessTokenDuration: time.Minute,
		Issuer:              "test",
	})
	passwordService := auth.NewPasswordServiceWithCost(bcrypt.MinCost)

	server := NewServer(broken, directory, nil, jwtService, passwordService, time.Hour, []string{"*"}, zap.NewNop())
	return server.SetupRoutes()
}

func (e *testEnv) authHeader(t *testing.T) map[string]string {
	t.Helper()
	token, err := e.jwt.GenerateAccessToken(1, "admin")
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func (e *testEnv) seedGroup(t *testing.T, name, link, category string) *domain.Group {
	t.Helper()
	group := &domain.Group{
		Name:     name,
		Link:     link,
		Category: category,
		Approved: true,
		AddedAt:  time.Now().UTC(),
	}
	require.NoError(t, e.storage.SaveGroup(context.Background(), group))
	return group
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(dst))
}
