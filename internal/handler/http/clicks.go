package http

import (
	"WAGroups-Backend/internal/analytics"
	"WAGroups-Backend/internal/repository"
	"WAGroups-Backend/internal/service"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ClicksHandler serves the click counter endpoint and the join redirect.
type ClicksHandler struct {
	directory *service.DirectoryService
	storage   repository.Storage
	recorder  analytics.Recorder
	log       *zap.Logger
}

// NewClicksHandler creates a new clicks handler. recorder may be nil when
// telemetry is disabled.
func NewClicksHandler(directory *service.DirectoryService, storage repository.Storage, recorder analytics.Recorder, log *zap.Logger) *ClicksHandler {
	return &ClicksHandler{
		directory: directory,
		storage:   storage,
		recorder:  recorder,
		log:       log,
	}
}

// ClickRequest is the optional click request body; legacy clients identify
// the group by link instead of the path id.
type ClickRequest struct {
	Link string `json:"link,omitempty"`
}

// ClickResponse is the click counter response body.
type ClickResponse struct {
	Success bool  `json:"success"`
	Clicks  int64 `json:"clicks"`
}

// Click increments the click counter for a group.
//
//	@Summary		Register a click
//	@Description	Atomically increment a group's click counter
//	@Tags			Clicks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Group id"
//	@Param			request	body		ClickRequest	false	"Legacy link-based identification"
//	@Success		200		{object}	ClickResponse	"New click count"
//	@Failure		404		{object}	ErrorResponse	"NOT_FOUND"
//	@Failure		500		{object}	ErrorResponse	"Store failure"
//	@Router			/api/groups/{id}/click [post]
func (h *ClicksHandler) Click(w http.ResponseWriter, r *http.Request, groupID int64) {
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "INVALID_REQUEST", "Invalid request format", http.StatusBadRequest)
		return
	}

	clicks, err := h.directory.RegisterClick(r.Context(), groupID, req.Link)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			writeError(w, "NOT_FOUND", "Group not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to register click", zap.Int64("group_id", groupID), zap.Error(err))
		writeError(w, "STORE_ERROR", "Failed to register click", http.StatusInternalServerError)
		return
	}

	h.submitTelemetry(r, groupID)

	writeJSON(w, ClickResponse{Success: true, Clicks: clicks}, http.StatusOK)
}

// Join counts a click and redirects to the group's WhatsApp link. The
// increment and telemetry are best-effort: a store hiccup is logged and the
// visitor is still redirected.
//
//	@Summary		Join a group
//	@Description	Count the click and redirect to the WhatsApp invite link
//	@Tags			Clicks
//	@Param			id	path	int	true	"Group id"
//	@Success		302	"Redirect to the WhatsApp link"
//	@Failure		404	{object}	ErrorResponse	"NOT_FOUND"
//	@Router			/join/{id} [get]
func (h *ClicksHandler) Join(w http.ResponseWriter, r *http.Request, groupID int64) {
	group, err := h.storage.GetGroup(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			writeError(w, "NOT_FOUND", "Group not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to load group for join", zap.Int64("group_id", groupID), zap.Error(err))
		writeError(w, "STORE_ERROR", "Failed to load group", http.StatusInternalServerError)
		return
	}

	if _, err := h.storage.IncrementClicks(r.Context(), groupID); err != nil {
		h.log.Warn("click increment failed, redirecting anyway",
			zap.Int64("group_id", groupID), zap.Error(err))
	}

	h.submitTelemetry(r, groupID)

	h.log.Info("join redirect",
		zap.Int64("group_id", groupID),
		zap.String("category", group.Category))
	http.Redirect(w, r, group.Link, http.StatusFound)
}

func (h *ClicksHandler) submitTelemetry(r *http.Request, groupID int64) {
	if h.recorder == nil {
		return
	}

	ip := extractIPAddress(r)
	userAgent := r.UserAgent()
	referer := r.Referer()

	if err := h.recorder.SubmitClick(&analytics.Click{
		GroupID:   groupID,
		IPAddress: &ip,
		UserAgent: &userAgent,
		Referer:   &referer,
	}); err != nil {
		h.log.Debug("click telemetry not recorded", zap.Int64("group_id", groupID), zap.Error(err))
	}
}

// extractIPAddress extracts the client IP, honoring proxy headers.
func extractIPAddress(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return strings.TrimSpace(ip)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
