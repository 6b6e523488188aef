package http

import (
	"WAGroups-Backend/internal/analytics"
	"WAGroups-Backend/internal/auth"
	"WAGroups-Backend/internal/repository"
	"WAGroups-Backend/internal/service"
	"net/http"
	"strconv"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Server wires the HTTP handlers and middleware.
type Server struct {
	authHandlers      *auth.AuthHandlers
	groupsHandler     *GroupsHandler
	clicksHandler     *ClicksHandler
	moderationHandler *ModerationHandler
	healthHandler     *HealthHandler
	authMiddleware    *auth.Middleware
	log               *zap.Logger
}

// NewServer creates the HTTP server with every dependency injected; nothing
// here reaches for package-level state.
func NewServer(
	storage repository.Storage,
	directory *service.DirectoryService,
	recorder analytics.Recorder,
	jwtService *auth.JWTService,
	passwordService *auth.PasswordService,
	refreshTokenTTL time.Duration,
	allowedOrigins []string,
	log *zap.Logger,
) *Server {
	return &Server{
		authHandlers:      auth.NewAuthHandlers(storage, jwtService, passwordService, refreshTokenTTL, log),
		groupsHandler:     NewGroupsHandler(directory, log),
		clicksHandler:     NewClicksHandler(directory, storage, recorder, log),
		moderationHandler: NewModerationHandler(storage, log),
		healthHandler:     NewHealthHandler(storage, recorder, log),
		authMiddleware:    auth.NewMiddleware(jwtService, allowedOrigins, log),
		log:               log,
	}
}

// SetupRoutes builds the route table.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks (no auth, no CORS needed)
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)
	mux.HandleFunc("/metrics", s.healthHandler.Metrics)

	// Swagger documentation
	mux.Handle("/api/v1/", httpSwagger.WrapHandler)

	// Admin auth endpoints
	mux.HandleFunc("/api/admin/login", s.withCORS(requirePost(s.authHandlers.Login)))
	mux.HandleFunc("/api/admin/refresh", s.withCORS(requirePost(s.authHandlers.Refresh)))
	mux.HandleFunc("/api/admin/logout", s.withCORS(requirePost(s.authHandlers.Logout)))
	mux.HandleFunc("/api/admin/stats", s.withCORS(s.authMiddleware.RequireAuth(s.moderationHandler.Stats)))

	// Public directory endpoints
	mux.HandleFunc("/api/groups", s.withCORS(s.handleGroups))
	mux.HandleFunc("/api/groups/", s.withCORS(s.handleGroupsSubtree))

	// Join redirect (no CORS: plain navigation, not an XHR)
	mux.HandleFunc("/join/", s.handleJoin)

	return mux
}

// handleGroups serves /api/groups: list on GET, submit on POST.
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.groupsHandler.List(w, r)
	case http.MethodPost:
		s.groupsHandler.Submit(w, r)
	default:
		writeError(w, "METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGroupsSubtree dispatches /api/groups/trending, /api/groups/{id},
// and /api/groups/{id}/click.
func (s *Server) handleGroupsSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/groups/"), "/")
	parts := strings.Split(rest, "/")

	if len(parts) == 1 && parts[0] == "trending" {
		s.groupsHandler.Trending(w, r)
		return
	}

	groupID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || groupID <= 0 {
		writeError(w, "NOT_FOUND", "Unknown group path", http.StatusNotFound)
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "click" && r.Method == http.MethodPost:
		s.clicksHandler.Click(w, r, groupID)
	case len(parts) == 1 && r.Method == http.MethodPatch:
		s.authMiddleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			s.moderationHandler.Moderate(w, r, groupID)
		})(w, r)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		s.authMiddleware.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			s.moderationHandler.Delete(w, r, groupID)
		})(w, r)
	default:
		writeError(w, "METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJoin serves GET /join/{id}.
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/join/"), "/")
	groupID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || groupID <= 0 {
		writeError(w, "NOT_FOUND", "Unknown group path", http.StatusNotFound)
		return
	}

	s.clicksHandler.Join(w, r, groupID)
}

// withCORS wraps a handler with the CORS middleware.
func (s *Server) withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.CORS(handler)
}

func requirePost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, "METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	}
}
