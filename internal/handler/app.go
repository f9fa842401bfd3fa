package handler

import (
	"log/slog"
	"net/http"

	"github.com/filevault/filevault/internal/service"
)

type AppHandler struct {
	statusService *service.StatusService
}

func NewAppHandler(statusService *service.StatusService) *AppHandler {
	return &AppHandler{statusService: statusService}
}

// Status reports liveness of the metadata and session stores.
func (h *AppHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.statusService.Status())
}

// Stats reports how many users and files exist.
func (h *AppHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statusService.Stats()
	if err != nil {
		slog.Error("failed to collect stats", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
