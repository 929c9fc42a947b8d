package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"schoolride-backend/application/services"
	"schoolride-backend/pkg/common"
)

// AdminHandler serves operational endpoints for the secondary store
type AdminHandler struct {
	mirrorSync *services.MirrorSyncService
	logger     *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(mirrorSync *services.MirrorSyncService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		mirrorSync: mirrorSync,
		logger:     logger,
	}
}

// SyncMirror handles POST /admin/mirror/sync
func (h *AdminHandler) SyncMirror(w http.ResponseWriter, r *http.Request) {
	schoolID := r.URL.Query().Get("school_id")
	if schoolID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "school_id is required")
		return
	}

	report, err := h.mirrorSync.SyncSchool(r.Context(), schoolID)
	if err != nil {
		h.logger.Error("Mirror sync failed", zap.String("schoolID", schoolID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, report)
}

// AuditMirror handles GET /admin/mirror/audit
func (h *AdminHandler) AuditMirror(w http.ResponseWriter, r *http.Request) {
	schoolID := r.URL.Query().Get("school_id")
	if schoolID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "school_id is required")
		return
	}

	report, err := h.mirrorSync.AuditSchool(r.Context(), schoolID)
	if err != nil {
		h.logger.Error("Mirror audit failed", zap.String("schoolID", schoolID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, report)
}
