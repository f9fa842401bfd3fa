package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/filevault/filevault/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(file *model.File) error
	ByID(id string) (*model.File, error)
	// ByIDAndUser scopes the lookup by owner. Ownership is enforced by the
	// query itself: a wrong owner is indistinguishable from a missing record.
	ByIDAndUser(id, userID string) (*model.File, error)
	// SetPublic atomically flips the visibility flag for an owner-scoped
	// record and returns the updated row.
	SetPublic(id, userID string, public bool) (*model.File, error)
	Count() (int64, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}

	query := `INSERT INTO files (id, user_id, name, type, public, parent_id, local_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		file.ID,
		file.UserID,
		file.Name,
		file.Type,
		file.Public,
		file.ParentID,
		file.LocalPath,
		file.CreatedAt,
	)

	return err
}

func (r *fileRepository) ByID(id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.Get(file, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) ByIDAndUser(id, userID string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1 AND user_id = $2`

	err := r.db.Get(file, query, id, userID)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) SetPublic(id, userID string, public bool) (*model.File, error) {
	file := &model.File{}
	query := `UPDATE files SET public = $1 WHERE id = $2 AND user_id = $3 RETURNING *`

	err := r.db.Get(file, query, public, id, userID)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) Count() (int64, error) {
	var n int64
	err := r.db.Get(&n, `SELECT COUNT(*) FROM files`)
	return n, err
}
