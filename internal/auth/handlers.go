package auth

import (
	"WAGroups-Backend/internal/domain"
	"WAGroups-Backend/internal/repository"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandlers serves the admin login/refresh/logout endpoints.
type AuthHandlers struct {
	storage         repository.Storage
	jwtService      *JWTService
	passwordService *PasswordService
	refreshTokenTTL time.Duration
	log             *zap.Logger
}

// NewAuthHandlers creates the admin auth handlers.
func NewAuthHandlers(storage repository.Storage, jwtService *JWTService, passwordService *PasswordService, refreshTokenTTL time.Duration, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		storage:         storage,
		jwtService:      jwtService,
		passwordService: passwordService,
		refreshTokenTTL: refreshTokenTTL,
		log:             log,
	}
}

// LoginRequest is the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token for exchange or revocation.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is the successful auth response body.
type AuthResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Admin        AdminInfo `json:"admin"`
}

// AdminInfo is the admin part of an auth response.
type AdminInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ErrorResponse is the error body shape of the auth endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Login authenticates an admin against the stored bcrypt hash and issues an
// access token plus a DB-backed refresh token.
//
//	@Summary		Admin login
//	@Description	Authenticate an administrator and receive JWT tokens
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login request"
//	@Success		200		{object}	AuthResponse	"Login successful"
//	@Failure		400		{object}	ErrorResponse	"Invalid request data"
//	@Failure		401		{object}	ErrorResponse	"Invalid credentials"
//	@Router			/api/admin/login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid login request", zap.Error(err))
		h.writeError(w, "INVALID_REQUEST", "Invalid request format", http.StatusBadRequest)
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		h.writeError(w, "INVALID_REQUEST", "Username and password are required", http.StatusBadRequest)
		return
	}

	admin, err := h.storage.GetAdminByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrAdminNotFound) {
			h.log.Error("failed to look up admin", zap.Error(err))
			h.writeError(w, "STORE_ERROR", "Internal server error", http.StatusInternalServerError)
			return
		}
		h.log.Debug("admin not found for login", zap.String("username", req.Username))
		h.writeError(w, "INVALID_CREDENTIALS", "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if err := h.passwordService.VerifyPassword(admin.PasswordHash, req.Password); err != nil {
		h.log.Debug("invalid password for admin", zap.String("username", req.Username))
		h.writeError(w, "INVALID_CREDENTIALS", "Invalid username or password", http.StatusUnauthorized)
		return
	}

	now := time.Now()
	admin.LastLoginAt = &now
	if err := h.storage.UpdateAdmin(r.Context(), admin); err != nil {
		h.log.Warn("failed to update last login time", zap.Int64("admin_id", admin.ID), zap.Error(err))
	}

	h.issueTokens(w, r, admin)
	h.log.Info("admin logged in", zap.Int64("admin_id", admin.ID), zap.String("username", admin.Username))
}

// Refresh exchanges a valid refresh token for a fresh token pair. The used
// token is revoked (single-use rotation).
//
//	@Summary		Refresh admin tokens
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest	true	"Refresh request"
//	@Success		200		{object}	AuthResponse	"Tokens rotated"
//	@Failure		401		{object}	ErrorResponse	"Invalid or expired refresh token"
//	@Router			/api/admin/refresh [post]
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		h.writeError(w, "INVALID_REQUEST", "refresh_token is required", http.StatusBadRequest)
		return
	}

	rt, err := h.storage.GetRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if !errors.Is(err, repository.ErrTokenNotFound) {
			h.log.Error("failed to look up refresh token", zap.Error(err))
			h.writeError(w, "STORE_ERROR", "Internal server error", http.StatusInternalServerError)
			return
		}
		h.writeError(w, "INVALID_TOKEN", "Unknown refresh token", http.StatusUnauthorized)
		return
	}
	if !rt.IsValid() {
		h.writeError(w, "INVALID_TOKEN", "Refresh token expired or revoked", http.StatusUnauthorized)
		return
	}

	admin, err := h.storage.GetAdminByID(r.Context(), rt.AdminID)
	if err != nil {
		h.writeError(w, "INVALID_TOKEN", "Admin account no longer active", http.StatusUnauthorized)
		return
	}

	if err := h.storage.RevokeRefreshToken(r.Context(), rt.Token); err != nil {
		h.log.Warn("failed to revoke rotated refresh token", zap.Error(err))
	}

	h.issueTokens(w, r, admin)
}

// Logout revokes the presented refresh token.
//
//	@Summary		Admin logout
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body	RefreshRequest	true	"Logout request"
//	@Success		204		"Logged out"
//	@Router			/api/admin/logout [post]
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		h.writeError(w, "INVALID_REQUEST", "refresh_token is required", http.StatusBadRequest)
		return
	}

	if err := h.storage.RevokeRefreshToken(r.Context(), req.RefreshToken); err != nil &&
		!errors.Is(err, repository.ErrTokenNotFound) {
		h.log.Error("failed to revoke refresh token", zap.Error(err))
		h.writeError(w, "STORE_ERROR", "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandlers) issueTokens(w http.ResponseWriter, r *http.Request, admin *domain.AdminUser) {
	accessToken, err := h.jwtService.GenerateAccessToken(admin.ID, admin.Username)
	if err != nil {
		h.log.Error("failed to generate access token", zap.Error(err))
		h.writeError(w, "INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError)
		return
	}

	userAgent := r.UserAgent()
	refreshToken := &domain.RefreshToken{
		AdminID:   admin.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(h.refreshTokenTTL),
		UserAgent: &userAgent,
	}
	if err := h.storage.SaveRefreshToken(r.Context(), refreshToken); err != nil {
		h.log.Error("failed to save refresh token", zap.Error(err))
		h.writeError(w, "STORE_ERROR", "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		Admin: AdminInfo{
			ID:       admin.ID,
			Username: admin.Username,
		},
	}, http.StatusOK)
}

func (h *AuthHandlers) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *AuthHandlers) writeError(w http.ResponseWriter, code, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: code, Message: message})
}
