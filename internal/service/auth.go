package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/session"
)

var ErrUnauthorized = errors.New("unauthorized")

// AuthService issues and resolves opaque session tokens. Tokens live in
// the session store with a TTL; resolving an expired or revoked token
// fails the same way as an unknown one.
type AuthService struct {
	users    repository.UserRepository
	sessions *session.Store
	ttl      time.Duration
}

func NewAuthService(users repository.UserRepository, sessions *session.Store, ttl time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
	}
}

// Connect verifies credentials and mints a fresh session token.
func (s *AuthService) Connect(email, password string) (string, error) {
	user, err := s.users.ByEmail(email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return "", ErrUnauthorized
	}

	token := uuid.New().String()
	err = s.sessions.Set(token, user.ID, s.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Disconnect revokes a token. Unknown tokens are ErrUnauthorized.
func (s *AuthService) Disconnect(token string) error {
	_, err := s.sessions.Get(token)
	if errors.Is(err, session.ErrNotFound) {
		return ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	return s.sessions.Delete(token)
}

// UserID resolves a token to its user id.
func (s *AuthService) UserID(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	userID, err := s.sessions.Get(token)
	if errors.Is(err, session.ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return userID, nil
}

// User resolves a token to the full user record.
func (s *AuthService) User(token string) (*model.User, error) {
	userID, err := s.UserID(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.ByID(userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return user, nil
}
