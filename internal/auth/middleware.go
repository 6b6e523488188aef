package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// ContextKey type for context values.
type ContextKey string

const (
	// AdminIDKey is the context key for the authenticated admin id.
	AdminIDKey ContextKey = "admin_id"
	// AdminUsernameKey is the context key for the authenticated admin username.
	AdminUsernameKey ContextKey = "admin_username"
)

// Middleware guards admin endpoints and applies CORS.
type Middleware struct {
	jwtService     *JWTService
	allowedOrigins []string
	log            *zap.Logger
}

// NewMiddleware creates the auth/CORS middleware. An allowedOrigins entry of
// "*" permits any origin, which is the default for the public directory API.
func NewMiddleware(jwtService *JWTService, allowedOrigins []string, log *zap.Logger) *Middleware {
	return &Middleware{
		jwtService:     jwtService,
		allowedOrigins: allowedOrigins,
		log:            log,
	}
}

// RequireAuth rejects requests without a valid admin access token.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.log.Debug("missing authorization header")
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		tokenString := ExtractTokenFromBearer(authHeader)
		if tokenString == "" {
			m.log.Debug("invalid authorization header format")
			http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.log.Debug("invalid token", zap.Error(err))
			if err == ErrExpiredToken {
				http.Error(w, "Token expired", http.StatusUnauthorized)
			} else {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
			}
			return
		}

		ctx := context.WithValue(r.Context(), AdminIDKey, claims.AdminID)
		ctx = context.WithValue(ctx, AdminUsernameKey, claims.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetAdminIDFromContext extracts the admin id set by RequireAuth.
func GetAdminIDFromContext(ctx context.Context) (int64, bool) {
	adminID, ok := ctx.Value(AdminIDKey).(int64)
	return adminID, ok
}

// GetAdminUsernameFromContext extracts the admin username set by RequireAuth.
func GetAdminUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(AdminUsernameKey).(string)
	return username, ok
}

// CORS answers preflight requests and sets permissive cross-origin headers
// on every wrapped route.
func (m *Middleware) CORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		for _, allowed := range m.allowedOrigins {
			if allowed == "*" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				break
			}
			if origin == allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}
