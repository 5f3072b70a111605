// Package service holds background workers detached from request
// lifetimes
package service

import (
	"context"
	"time"

	"lumenfolio/portfolio-api/storage"

	"go.uber.org/zap"
)

// CleanupJob names a batch of media objects to purge after their owning
// record is already gone from the database.
type CleanupJob struct {
	Label string
	Refs  []storage.DestroyRef
}

// CleanupRunner is what handlers enqueue onto. Tests swap in a recorder.
type CleanupRunner interface {
	Enqueue(job CleanupJob)
}

// CleanupQueue runs media deletions on a small worker pool. Failures are
// logged and never retried, the database record is the durability
// boundary, not the media purge.
type CleanupQueue struct {
	media   storage.MediaStore
	jobs    chan CleanupJob
	workers int
}

func NewCleanupQueue(media storage.MediaStore, workers int) *CleanupQueue {
	if workers <= 0 {
		workers = 2
	}

	return &CleanupQueue{
		media:   media,
		jobs:    make(chan CleanupJob, 64),
		workers: workers,
	}
}

func (q *CleanupQueue) StartWorkerPool() {
	for range q.workers {
		go q.worker()
	}
}

// Enqueue never blocks the request path. A full queue drops the job and
// leaves orphaned media behind, which is logged loudly.
func (q *CleanupQueue) Enqueue(job CleanupJob) {
	select {
	case q.jobs <- job:
	default:
		zap.L().Error("Cleanup queue full, dropping job", zap.String("label", job.Label), zap.Int("refs", len(job.Refs)))
	}
}

func (q *CleanupQueue) Close() {
	close(q.jobs)
}

func (q *CleanupQueue) worker() {
	for job := range q.jobs {
		q.run(job)
	}
}

func (q *CleanupQueue) run(job CleanupJob) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, ref := range job.Refs {
		_, err := q.media.Destroy(ctx, ref.PublicID, ref.ResourceType)
		if err != nil {
			zap.L().Error("Background media cleanup failed",
				zap.String("label", job.Label),
				zap.String("public_id", ref.PublicID),
				zap.Error(err),
			)
			continue
		}

		zap.L().Debug("Purged media object", zap.String("label", job.Label), zap.String("public_id", ref.PublicID))
	}
}
