package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/filevault/filevault/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type connectResponse struct {
	Token string `json:"token"`
}

// Connect exchanges Basic credentials for a session token.
func (h *AuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	token, err := h.authService.Connect(email, password)
	if errors.Is(err, service.ErrUnauthorized) {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		slog.Error("failed to connect user", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, connectResponse{Token: token})
}

// Disconnect revokes the session token from the X-Token header.
func (h *AuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Token")

	err := h.authService.Disconnect(token)
	if errors.Is(err, service.ErrUnauthorized) {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err != nil {
		slog.Error("failed to disconnect user", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
