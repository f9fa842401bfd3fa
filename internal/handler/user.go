package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/filevault/filevault/internal/ctxkeys"
	"github.com/filevault/filevault/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new user from email and password.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Missing email")
		return
	}

	user, err := h.userService.Register(req.Email, req.Password)
	switch {
	case errors.Is(err, service.ErrMissingEmail):
		respondError(w, http.StatusBadRequest, "Missing email")
	case errors.Is(err, service.ErrMissingPassword):
		respondError(w, http.StatusBadRequest, "Missing password")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusBadRequest, "Already exist")
	case err != nil:
		slog.Error("failed to register user", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	default:
		respondJSON(w, http.StatusCreated, user)
	}
}

// Me returns the authenticated user.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userService.ByID(userID)
	if err != nil {
		slog.Error("failed to load user", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
