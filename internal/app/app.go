package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/filevault/filevault/internal/config"
	"github.com/filevault/filevault/internal/db"
	"github.com/filevault/filevault/internal/queue"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/service"
	"github.com/filevault/filevault/internal/session"
	"github.com/filevault/filevault/internal/storage"
	"github.com/filevault/filevault/internal/worker"
)

type App struct {
	Cfg      *config.Config
	DB       *sqlx.DB
	Sessions *session.Store
	Queue    *queue.Queue
	Storage  storage.Storage

	FileRepository repository.FileRepository
	UserRepository repository.UserRepository

	AuthService   *service.AuthService
	UserService   *service.UserService
	FileService   *service.FileService
	StatusService *service.StatusService

	Worker *worker.Worker
}

func New(cfg *config.Config) (*App, error) {
	// Metadata store
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Session store
	sessions, err := session.Open(cfg.SessionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %v", err)
	}

	// Job queue
	jobQueue, err := queue.Open(cfg.QueuePath, cfg.JobMaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize job queue: %v", err)
	}

	// Blob storage
	blobStorage, err := storage.NewLocal(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Services
	authService := service.NewAuthService(userRepository, sessions, cfg.SessionTTL)
	userService := service.NewUserService(userRepository)
	fileService := service.NewFileService(fileRepository, blobStorage, jobQueue)
	statusService := service.NewStatusService(database, sessions, userRepository, fileRepository)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Sessions:       sessions,
		Queue:          jobQueue,
		Storage:        blobStorage,
		FileRepository: fileRepository,
		UserRepository: userRepository,
		AuthService:    authService,
		UserService:    userService,
		FileService:    fileService,
		StatusService:  statusService,
		Worker:         worker.New(jobQueue, fileRepository, blobStorage, cfg.WorkerConcurrency),
	}, nil
}

func (a *App) Close() error {
	var firstErr error
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.Sessions != nil {
		if err := a.Sessions.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
