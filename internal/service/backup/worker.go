package backup

import (
	"context"
	"sync"
	"time"

	"log/slog"
)

const jobTimeout = 10 * time.Second

type job struct {
	collectionName string
	docs           []any
	reason         string
}

// Worker runs backups off the request path. Destructive operations enqueue
// a snapshot and move on; the backup write is deliberately outside the
// caller's transaction, so a crash between the primary delete and the
// backup completing loses only the snapshot, never the delete's atomicity.
type Worker struct {
	svc    Service
	logger *slog.Logger
	jobs   chan job
	wg     sync.WaitGroup
	once   sync.Once
}

// NewWorker constructs a Worker with the given queue depth.
func NewWorker(svc Service, queueSize int, logger *slog.Logger) *Worker {
	if queueSize < 1 {
		queueSize = 64
	}
	return &Worker{
		svc:    svc,
		logger: logger,
		jobs:   make(chan job, queueSize),
	}
}

// Run drains the queue until Close is called, then finishes what is left.
func (w *Worker) Run() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for j := range w.jobs {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			if _, err := w.svc.Create(ctx, j.collectionName, j.docs, j.reason); err != nil {
				w.logger.Error("background backup failed",
					"collection", j.collectionName,
					"reason", j.reason,
					"error", err)
			}
			cancel()
		}
	}()
}

// Enqueue hands a snapshot to the worker. It never blocks the caller: when
// the queue is full the snapshot is dropped and logged.
func (w *Worker) Enqueue(collectionName string, docs []any, reason string) {
	select {
	case w.jobs <- job{collectionName: collectionName, docs: docs, reason: reason}:
	default:
		w.logger.Warn("backup queue full, snapshot dropped",
			"collection", collectionName,
			"reason", reason)
	}
}

// Close stops accepting jobs and waits for in-flight backups to finish.
func (w *Worker) Close() {
	w.once.Do(func() {
		close(w.jobs)
	})
	w.wg.Wait()
}
