// Package worker runs the thumbnail job pipeline: a long-lived consumer
// of the job queue that generates resized variants for uploaded images.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/filevault/filevault/internal/model"
	"github.com/filevault/filevault/internal/queue"
	"github.com/filevault/filevault/internal/repository"
	"github.com/filevault/filevault/internal/storage"
	"github.com/filevault/filevault/internal/thumbnail"
)

// Fatal job errors: the job is marked failed and not retried.
var (
	ErrMissingFileID = errors.New("missing fileId")
	ErrMissingUserID = errors.New("missing userId")
	ErrFileNotFound  = errors.New("file not found")
)

// fatalError marks a job error that retrying cannot fix.
type fatalError struct {
	err error
}

func (e fatalError) Error() string { return e.err.Error() }
func (e fatalError) Unwrap() error { return e.err }

func fatal(err error) error {
	return fatalError{err: err}
}

func isFatal(err error) bool {
	var fe fatalError
	return errors.As(err, &fe)
}

type Worker struct {
	queue       *queue.Queue
	files       repository.FileRepository
	store       storage.Storage
	concurrency int
}

func New(q *queue.Queue, files repository.FileRepository, store storage.Storage, concurrency int) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		queue:       q,
		files:       files,
		store:       store,
		concurrency: concurrency,
	}
}

// Run consumes jobs until ctx is canceled. It blocks; callers wanting a
// background pipeline start it in a goroutine.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("thumbnail worker started", "concurrency", w.concurrency)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.consume(ctx)
		}()
	}
	wg.Wait()

	slog.Info("thumbnail worker stopped")
}

func (w *Worker) consume(ctx context.Context) {
	for {
		msg, err := w.queue.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, queue.ErrClosed) {
				slog.Error("failed to dequeue thumbnail job", "error", err)
			}
			return
		}
		w.handle(msg)
	}
}

func (w *Worker) handle(msg *queue.Message) {
	err := w.process(msg.Payload)
	switch {
	case err == nil:
		if ackErr := w.queue.Ack(msg); ackErr != nil {
			slog.Error("failed to ack thumbnail job", "error", ackErr)
		}
	case isFatal(err):
		slog.Error("thumbnail job failed", "error", err)
		if failErr := w.queue.Fail(msg); failErr != nil {
			slog.Error("failed to drop thumbnail job", "error", failErr)
		}
	default:
		requeued, nackErr := w.queue.Nack(msg)
		if nackErr != nil {
			slog.Error("failed to requeue thumbnail job", "error", nackErr)
			return
		}
		slog.Warn("thumbnail job error", "error", err, "attempt", msg.Attempts+1, "requeued", requeued)
	}
}

// process generates all variants for one job. Partial failure leaves
// already-written variants in place; the queue's retry policy decides
// what happens next.
func (w *Worker) process(payload []byte) error {
	var job model.ThumbnailJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fatal(fmt.Errorf("failed to decode job: %w", err))
	}
	if job.FileID == "" {
		return fatal(ErrMissingFileID)
	}
	if job.UserID == "" {
		return fatal(ErrMissingUserID)
	}

	file, err := w.files.ByIDAndUser(job.FileID, job.UserID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return fatal(ErrFileNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up file: %w", err)
	}
	if file.Type != model.FileTypeImage || file.LocalPath == nil {
		return fatal(fmt.Errorf("file %s has no image content", file.ID))
	}

	src, err := w.readBlob(*file.LocalPath)
	if err != nil {
		return err
	}

	for _, width := range thumbnail.Widths {
		data, err := thumbnail.Generate(src, width)
		if err != nil {
			// Undecodable content cannot succeed on retry.
			return fatal(fmt.Errorf("failed to generate %d-wide variant: %w", width, err))
		}
		path := storage.VariantPath(*file.LocalPath, width)
		if err := w.store.Put(path, data); err != nil {
			return fmt.Errorf("failed to write %d-wide variant: %w", width, err)
		}
	}

	slog.Info("thumbnails generated", "file_id", file.ID, "widths", thumbnail.Widths)
	return nil
}

func (w *Worker) readBlob(path string) ([]byte, error) {
	rc, err := w.store.Open(path)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, fatal(fmt.Errorf("source blob %s is missing", path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open source blob: %w", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read source blob: %w", err)
	}
	return data, nil
}
