package http

import (
	"WAGroups-Backend/internal/domain"
	"WAGroups-Backend/internal/repository"
	"WAGroups-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// GroupsHandler serves the public listing and submission endpoints.
type GroupsHandler struct {
	directory *service.DirectoryService
	log       *zap.Logger
}

// NewGroupsHandler creates a new groups handler.
func NewGroupsHandler(directory *service.DirectoryService, log *zap.Logger) *GroupsHandler {
	return &GroupsHandler{
		directory: directory,
		log:       log,
	}
}

// SubmitGroupRequest is the submission request body.
type SubmitGroupRequest struct {
	Name        string `json:"name"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	CustomColor string `json:"custom_color,omitempty"`
}

// SubmitGroupResponse is the successful submission response body.
type SubmitGroupResponse struct {
	Success bool          `json:"success"`
	Data    *domain.Group `json:"data"`
}

// List returns groups ordered by recency.
//
//	@Summary		List groups
//	@Description	List directory groups, newest first, optionally filtered
//	@Tags			Groups
//	@Produce		json
//	@Param			cat		query		string	false	"Exact category filter"
//	@Param			q		query		string	false	"Free-text search over name/description/category"
//	@Param			limit	query		int		false	"Maximum number of results"
//	@Success		200		{array}		domain.Group		"Groups"
//	@Failure		500		{object}	ErrorResponse		"Store failure"
//	@Router			/api/groups [get]
func (h *GroupsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts := service.ListOptions{
		Category: r.URL.Query().Get("cat"),
		Search:   r.URL.Query().Get("q"),
	}
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 0 {
			h.writeError(w, "INVALID_REQUEST", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		opts.Limit = limit
	}

	groups, err := h.directory.List(r.Context(), opts)
	if err != nil {
		// A failed query is an error response, never an empty 200.
		h.log.Error("failed to list groups", zap.Error(err))
		h.writeError(w, "STORE_ERROR", "Failed to load groups", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, groups, http.StatusOK)
}

// Trending returns approved groups ordered by click count.
//
//	@Summary		Trending groups
//	@Tags			Groups
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of results"
//	@Success		200		{array}		domain.Group	"Groups"
//	@Failure		500		{object}	ErrorResponse	"Store failure"
//	@Router			/api/groups/trending [get]
func (h *GroupsHandler) Trending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	groups, err := h.directory.Trending(r.Context(), limit)
	if err != nil {
		h.log.Error("failed to list trending groups", zap.Error(err))
		h.writeError(w, "STORE_ERROR", "Failed to load groups", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, groups, http.StatusOK)
}

// Submit validates and inserts a new group.
//
//	@Summary		Submit a group
//	@Description	Add a new WhatsApp group to the directory
//	@Tags			Groups
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SubmitGroupRequest	true	"Submission"
//	@Success		200		{object}	SubmitGroupResponse	"Group created"
//	@Failure		400		{object}	ErrorResponse		"MISSING_FIELDS or INVALID_LINK"
//	@Failure		409		{object}	ErrorResponse		"DUPLICATE_LINK"
//	@Failure		500		{object}	ErrorResponse		"Store failure"
//	@Router			/api/groups [post]
func (h *GroupsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid submission request", zap.Error(err))
		h.writeError(w, "INVALID_REQUEST", "Invalid request format", http.StatusBadRequest)
		return
	}

	group, err := h.directory.Submit(r.Context(), service.Submission{
		Name:        req.Name,
		Link:        req.Link,
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CustomColor: req.CustomColor,
	})
	if err != nil {
		var vErr *service.ValidationError
		switch {
		case errors.As(err, &vErr):
			h.writeError(w, vErr.Code, vErr.Message, http.StatusBadRequest)
		case errors.Is(err, repository.ErrLinkExists):
			h.writeError(w, "DUPLICATE_LINK", "A group with this link already exists", http.StatusConflict)
		default:
			h.log.Error("failed to submit group", zap.Error(err))
			h.writeError(w, "STORE_ERROR", "Failed to save group", http.StatusInternalServerError)
		}
		return
	}

	h.log.Info("group submitted",
		zap.Int64("group_id", group.ID),
		zap.String("category", group.Category))
	h.writeJSON(w, SubmitGroupResponse{Success: true, Data: group}, http.StatusOK)
}

// Helper methods

func (h *GroupsHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	writeJSON(w, data, statusCode)
}

func (h *GroupsHandler) writeError(w http.ResponseWriter, code, message string, statusCode int) {
	writeError(w, code, message, statusCode)
}
