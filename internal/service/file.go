package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/storage"
)

var (
	ErrMissingName        = errors.New("missing name")
	ErrMissingType        = errors.New("missing or invalid type")
	ErrMissingData        = errors.New("missing data")
	ErrParentNotFound     = errors.New("parent not found")
	ErrParentNotFolder    = errors.New("parent is not a folder")
	ErrNotFound           = errors.New("not found")
	ErrFolderHasNoContent = errors.New("a folder doesn't have content")
	ErrInvalidSize        = errors.New("invalid size")
)

// thumbnailSizes are the accepted values for the size query parameter.
var thumbnailSizes = map[string]bool{
	"100": true,
	"250": true,
	"500": true,
}

// Enqueuer dispatches thumbnail jobs. Enqueue is fire-and-forget from
// the upload path's perspective.
type Enqueuer interface {
	Enqueue(payload []byte) error
}

// FileService owns the file lifecycle: creation with hierarchy and
// ownership rules, visibility changes, and content resolution.
type FileService struct {
	files repository.FileRepository
	store storage.Storage
	queue Enqueuer
}

func NewFileService(files repository.FileRepository, store storage.Storage, queue Enqueuer) *FileService {
	return &FileService{
		files: files,
		store: store,
		queue: queue,
	}
}

// CreateInput carries the upload request. Data is the base64 transport
// encoding of the raw content, required unless Type is folder.
type CreateInput struct {
	Name     string
	Type     string
	ParentID model.ParentID
	Public   bool
	Data     string
}

// Create validates and persists a new file record, writing content blobs
// for files and images and dispatching a thumbnail job for images.
// Validation order is name, type, data, parent.
func (s *FileService) Create(userID string, in CreateInput) (*model.File, error) {
	if in.Name == "" {
		return nil, ErrMissingName
	}
	if !model.ValidFileType(in.Type) {
		return nil, ErrMissingType
	}
	if in.Type != model.FileTypeFolder && in.Data == "" {
		return nil, ErrMissingData
	}

	if !in.ParentID.IsRoot() {
		parent, err := s.files.ByID(string(in.ParentID))
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrParentNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up parent: %w", err)
		}
		if parent.Type != model.FileTypeFolder {
			return nil, ErrParentNotFolder
		}
	}

	file := &model.File{
		UserID:   userID,
		Name:     in.Name,
		Type:     in.Type,
		Public:   in.Public,
		ParentID: in.ParentID,
	}

	if in.Type != model.FileTypeFolder {
		raw, err := base64.StdEncoding.DecodeString(in.Data)
		if err != nil {
			return nil, ErrMissingData
		}

		key := uuid.New().String()
		path, err := s.store.Save(key, bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to save blob: %w", err)
		}
		file.LocalPath = &path
	}

	err := s.files.Create(file)
	if err != nil {
		// If the insert fails, try to clean up the orphaned blob.
		if file.LocalPath != nil {
			delErr := s.store.Delete(*file.LocalPath)
			if delErr != nil && !errors.Is(delErr, storage.ErrNotExist) {
				slog.Error("failed to delete blob during cleanup", "error", delErr, "path", *file.LocalPath)
			}
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	if in.Type == model.FileTypeImage {
		s.enqueueThumbnailJob(userID, file.ID)
	}

	return file, nil
}

// enqueueThumbnailJob is best-effort: a queue failure never fails the
// upload, but it must be observable.
func (s *FileService) enqueueThumbnailJob(userID, fileID string) {
	payload, err := json.Marshal(model.ThumbnailJob{UserID: userID, FileID: fileID})
	if err != nil {
		slog.Error("failed to encode thumbnail job", "error", err, "file_id", fileID)
		return
	}
	err = s.queue.Enqueue(payload)
	if err != nil {
		slog.Error("failed to enqueue thumbnail job", "error", err, "file_id", fileID, "user_id", userID)
		return
	}
	slog.Debug("thumbnail job enqueued", "file_id", fileID, "user_id", userID)
}

// Show returns an owner-scoped file record.
func (s *FileService) Show(userID, fileID string) (*model.File, error) {
	file, err := s.files.ByIDAndUser(fileID, userID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up file: %w", err)
	}
	return file, nil
}

// Publish makes an owned file public. A nonexistent file and a file
// owned by someone else fail identically.
func (s *FileService) Publish(userID, fileID string) (*model.File, error) {
	return s.setPublic(userID, fileID, true)
}

// Unpublish makes an owned file private again.
func (s *FileService) Unpublish(userID, fileID string) (*model.File, error) {
	return s.setPublic(userID, fileID, false)
}

func (s *FileService) setPublic(userID, fileID string, public bool) (*model.File, error) {
	file, err := s.files.SetPublic(fileID, userID, public)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}
	return file, nil
}

// Content is a resolved blob ready for streaming.
type Content struct {
	Data io.ReadCloser
	MIME string
}

// Content resolves a file's bytes, or a pre-generated thumbnail variant
// when size is given. userID is empty for anonymous requests. Ownership
// failures on private files report as not-found so existence never
// leaks.
func (s *FileService) Content(userID, fileID, size string) (*Content, error) {
	// Size is validated before any lookup so an invalid size reports the
	// same whether or not the file exists.
	if size != "" && !thumbnailSizes[size] {
		return nil, ErrInvalidSize
	}

	file, err := s.files.ByID(fileID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up file: %w", err)
	}

	if file.Type == model.FileTypeFolder {
		return nil, ErrFolderHasNoContent
	}

	if !file.Public && (userID == "" || userID != file.UserID) {
		return nil, ErrNotFound
	}

	if file.LocalPath == nil {
		return nil, ErrNotFound
	}
	path := *file.LocalPath
	if size != "" {
		path = path + "_" + size
	}

	data, err := s.store.Open(path)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(file.Name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &Content{Data: data, MIME: mimeType}, nil
}
