package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/filevault/filevault/internal/ctxkeys"
	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/service"
)

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

type createFileRequest struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	ParentID model.ParentID `json:"parentId"`
	Public   bool           `json:"isPublic"`
	Data     string         `json:"data"`
}

// Create handles uploads of folders, files, and images.
func (h *FileHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Missing name")
		return
	}

	file, err := h.fileService.Create(userID, service.CreateInput{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: req.ParentID,
		Public:   req.Public,
		Data:     req.Data,
	})
	if err != nil {
		h.respondCreateError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, file)
}

func (h *FileHandler) respondCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingName):
		respondError(w, http.StatusBadRequest, "Missing name")
	case errors.Is(err, service.ErrMissingType):
		respondError(w, http.StatusBadRequest, "Missing type")
	case errors.Is(err, service.ErrMissingData):
		respondError(w, http.StatusBadRequest, "Missing data")
	case errors.Is(err, service.ErrParentNotFound):
		respondError(w, http.StatusBadRequest, "Parent not found")
	case errors.Is(err, service.ErrParentNotFolder):
		respondError(w, http.StatusBadRequest, "Parent is not a folder")
	default:
		slog.Error("failed to create file", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Show returns an owned file's metadata.
func (h *FileHandler) Show(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	file, err := h.fileService.Show(userID, r.PathValue("id"))
	if errors.Is(err, service.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.Error("failed to load file", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, file)
}

// Publish flips an owned file to public.
func (h *FileHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, true)
}

// Unpublish flips an owned file back to private.
func (h *FileHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, false)
}

func (h *FileHandler) setPublic(w http.ResponseWriter, r *http.Request, public bool) {
	userID := ctxkeys.UserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var file *model.File
	var err error
	if public {
		file, err = h.fileService.Publish(userID, r.PathValue("id"))
	} else {
		file, err = h.fileService.Unpublish(userID, r.PathValue("id"))
	}
	if errors.Is(err, service.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		slog.Error("failed to update visibility", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, file)
}

// Data streams a file's content, or a thumbnail variant when the size
// query parameter is given. Token is optional: public files need none.
func (h *FileHandler) Data(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	content, err := h.fileService.Content(userID, r.PathValue("id"), r.URL.Query().Get("size"))
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
		return
	case errors.Is(err, service.ErrFolderHasNoContent):
		respondError(w, http.StatusBadRequest, "A folder doesn't have content")
		return
	case errors.Is(err, service.ErrInvalidSize):
		respondError(w, http.StatusBadRequest, "Invalid size")
		return
	case err != nil:
		slog.Error("failed to resolve content", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer func() { _ = content.Data.Close() }()

	w.Header().Set("Content-Type", content.MIME)
	w.WriteHeader(http.StatusOK)
	_, err = io.Copy(w, content.Data)
	if err != nil {
		slog.Error("failed to stream content", "error", err)
	}
}
