package http

import (
	"WAGroups-Backend/internal/repository"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ModerationHandler serves the admin moderation endpoints.
type ModerationHandler struct {
	storage repository.Storage
	log     *zap.Logger
}

// NewModerationHandler creates a new moderation handler.
func NewModerationHandler(storage repository.Storage, log *zap.Logger) *ModerationHandler {
	return &ModerationHandler{
		storage: storage,
		log:     log,
	}
}

// ModerateRequest is the approval update body. A missing "approved" field
// toggles the current value.
type ModerateRequest struct {
	Approved *bool `json:"approved"`
}

// Moderate sets or toggles the approved flag on a group.
//
//	@Summary		Moderate a group
//	@Description	Set or toggle the approved flag
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int				true	"Group id"
//	@Param			request	body		ModerateRequest	false	"Approval update"
//	@Success		200		{object}	domain.Group	"Updated group"
//	@Failure		404		{object}	ErrorResponse	"NOT_FOUND"
//	@Router			/api/groups/{id} [patch]
func (h *ModerationHandler) Moderate(w http.ResponseWriter, r *http.Request, groupID int64) {
	var req ModerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, "INVALID_REQUEST", "Invalid request format", http.StatusBadRequest)
		return
	}

	approved := false
	if req.Approved != nil {
		approved = *req.Approved
	} else {
		current, err := h.storage.GetGroup(r.Context(), groupID)
		if err != nil {
			if errors.Is(err, repository.ErrGroupNotFound) {
				writeError(w, "NOT_FOUND", "Group not found", http.StatusNotFound)
				return
			}
			h.log.Error("failed to load group for moderation", zap.Int64("group_id", groupID), zap.Error(err))
			writeError(w, "STORE_ERROR", "Failed to load group", http.StatusInternalServerError)
			return
		}
		approved = !current.Approved
	}

	group, err := h.storage.SetApproved(r.Context(), groupID, approved)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			writeError(w, "NOT_FOUND", "Group not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to update approval", zap.Int64("group_id", groupID), zap.Error(err))
		writeError(w, "STORE_ERROR", "Failed to update group", http.StatusInternalServerError)
		return
	}

	h.log.Info("group moderated",
		zap.Int64("group_id", groupID),
		zap.Bool("approved", approved))
	writeJSON(w, group, http.StatusOK)
}

// Delete removes a group from the directory.
//
//	@Summary		Delete a group
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Group id"
//	@Success		204	"Group deleted"
//	@Failure		404	{object}	ErrorResponse	"NOT_FOUND"
//	@Router			/api/groups/{id} [delete]
func (h *ModerationHandler) Delete(w http.ResponseWriter, r *http.Request, groupID int64) {
	if err := h.storage.DeleteGroup(r.Context(), groupID); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			writeError(w, "NOT_FOUND", "Group not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to delete group", zap.Int64("group_id", groupID), zap.Error(err))
		writeError(w, "STORE_ERROR", "Failed to delete group", http.StatusInternalServerError)
		return
	}

	h.log.Info("group deleted", zap.Int64("group_id", groupID))
	w.WriteHeader(http.StatusNoContent)
}

// Stats returns directory totals for the admin dashboard.
//
//	@Summary		Directory stats
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	domain.DirectoryStats	"Totals"
//	@Failure		500	{object}	ErrorResponse			"Store failure"
//	@Router			/api/admin/stats [get]
func (h *ModerationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.storage.GetDirectoryStats(r.Context())
	if err != nil {
		h.log.Error("failed to load directory stats", zap.Error(err))
		writeError(w, "STORE_ERROR", "Failed to load stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, stats, http.StatusOK)
}
