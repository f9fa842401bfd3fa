package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/filevault/filevault/internal/db"
	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/queue"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/session"
	"github.com/filevault/filevault/internal/storage"
)

const testSessionTTL = time.Hour

type fixture struct {
	db       *sqlx.DB
	users    repository.UserRepository
	files    repository.FileRepository
	sessions *session.Store
	queue    *queue.Queue
	storage  *storage.Local

	userService *UserService
	authService *AuthService
	fileService *FileService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	sessions, err := session.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	jobQueue, err := queue.OpenInMemory(3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = jobQueue.Close() })

	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	users := repository.NewUserRepository(database)
	files := repository.NewFileRepository(database)

	return &fixture{
		db:          database,
		users:       users,
		files:       files,
		sessions:    sessions,
		queue:       jobQueue,
		storage:     local,
		userService: NewUserService(users),
		authService: NewAuthService(users, sessions, testSessionTTL),
		fileService: NewFileService(files, local, jobQueue),
	}
}

func (f *fixture) registerUser(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := f.userService.Register(email, "hunter2")
	require.NoError(t, err)
	return user
}
