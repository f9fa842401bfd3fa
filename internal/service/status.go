package service

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/session"
)

// StatusService exposes liveness of the backing stores and collection
// counts for the operational endpoints.
type StatusService struct {
	db       *sqlx.DB
	sessions *session.Store
	users    repository.UserRepository
	files    repository.FileRepository
}

func NewStatusService(db *sqlx.DB, sessions *session.Store, users repository.UserRepository, files repository.FileRepository) *StatusService {
	return &StatusService{
		db:       db,
		sessions: sessions,
		users:    users,
		files:    files,
	}
}

type Status struct {
	DB       bool `json:"db"`
	Sessions bool `json:"sessions"`
}

func (s *StatusService) Status() Status {
	return Status{
		DB:       s.db.Ping() == nil,
		Sessions: s.sessions.IsAlive(),
	}
}

type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

func (s *StatusService) Stats() (*Stats, error) {
	users, err := s.users.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	files, err := s.files.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	return &Stats{Users: users, Files: files}, nil
}
