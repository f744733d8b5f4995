// Package queue implements the deferred-turn work queue on the turn_jobs
// table.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"homehub/assistant-api/internal/domain/job"
	"homehub/assistant-api/internal/infrastructure/database/entities"
)

// PostgresQueue implements job.Queue using the turn_jobs table.
type PostgresQueue struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewPostgresQueue creates a new PostgreSQL-backed turn job queue.
func NewPostgresQueue(db *gorm.DB, log zerolog.Logger) *PostgresQueue {
	return &PostgresQueue{
		db:  db,
		log: log.With().Str("component", "postgres-queue").Logger(),
	}
}

// Enqueue persists a new queued job.
func (q *PostgresQueue) Enqueue(ctx context.Context, j *job.TurnJob) error {
	entity := entities.NewSchemaTurnJob(j)
	if err := q.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("enqueue turn job: %w", err)
	}
	j.ID = entity.ID
	return nil
}

// Dequeue claims the oldest queued job using FOR UPDATE SKIP LOCKED inside
// a single UPDATE, so the claim and the read cannot race another worker.
func (q *PostgresQueue) Dequeue(ctx context.Context) (*job.TurnJob, error) {
	var entity entities.TurnJob

	err := q.db.WithContext(ctx).
		Raw(`UPDATE turn_jobs
			SET status = ?, attempts = attempts + 1, started_at = now(), updated_at = now()
			WHERE id = (
				SELECT id FROM turn_jobs
				WHERE status = ?
				ORDER BY enqueued_at ASC
				LIMIT 1
				FOR UPDATE SKIP LOCKED
			)
			RETURNING *`, string(job.StatusProcessing), string(job.StatusQueued)).
		Scan(&entity).Error
	if err != nil {
		return nil, fmt.Errorf("dequeue turn job: %w", err)
	}

	// No rows matched: the queue is empty.
	if entity.ID == 0 {
		return nil, nil
	}

	return entity.EtoD(), nil
}

// MarkCompleted stores the result text and moves the job to completed.
func (q *PostgresQueue) MarkCompleted(ctx context.Context, publicID, resultText string) error {
	now := time.Now().UTC()
	result := q.db.WithContext(ctx).
		Model(&entities.TurnJob{}).
		Where("public_id = ?", publicID).
		Updates(map[string]interface{}{
			"status":       string(job.StatusCompleted),
			"result_text":  resultText,
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("mark completed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("turn job not found: %s", publicID)
	}
	return nil
}

// MarkFailed stores the error and moves the job to failed.
func (q *PostgresQueue) MarkFailed(ctx context.Context, publicID, errMsg string) error {
	now := time.Now().UTC()
	result := q.db.WithContext(ctx).
		Model(&entities.TurnJob{}).
		Where("public_id = ?", publicID).
		Updates(map[string]interface{}{
			"status":       string(job.StatusFailed),
			"error":        errMsg,
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("mark failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("turn job not found: %s", publicID)
	}
	return nil
}

// RequeueStale returns processing jobs stuck longer than olderThan to the
// queue. Jobs that already burned maxAttempts fail instead of looping
// forever.
func (q *PostgresQueue) RequeueStale(ctx context.Context, olderThan time.Duration, maxAttempts int) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	failed := q.db.WithContext(ctx).
		Model(&entities.TurnJob{}).
		Where("status = ? AND started_at < ? AND attempts >= ?", string(job.StatusProcessing), cutoff, maxAttempts).
		Updates(map[string]interface{}{
			"status":       string(job.StatusFailed),
			"error":        "worker timed out",
			"completed_at": time.Now().UTC(),
			"updated_at":   time.Now().UTC(),
		})
	if failed.Error != nil {
		return 0, fmt.Errorf("fail exhausted jobs: %w", failed.Error)
	}

	requeued := q.db.WithContext(ctx).
		Model(&entities.TurnJob{}).
		Where("status = ? AND started_at < ?", string(job.StatusProcessing), cutoff).
		Updates(map[string]interface{}{
			"status":     string(job.StatusQueued),
			"started_at": nil,
			"updated_at": time.Now().UTC(),
		})
	if requeued.Error != nil {
		return 0, fmt.Errorf("requeue stale jobs: %w", requeued.Error)
	}

	total := int(failed.RowsAffected + requeued.RowsAffected)
	if total > 0 {
		q.log.Warn().
			Int64("requeued", requeued.RowsAffected).
			Int64("failed", failed.RowsAffected).
			Msg("recovered stale turn jobs")
	}
	return total, nil
}

// PurgeTerminal deletes completed and failed jobs last touched before the
// retention window.
func (q *PostgresQueue) PurgeTerminal(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result := q.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?",
			[]string{string(job.StatusCompleted), string(job.StatusFailed)}, cutoff).
		Delete(&entities.TurnJob{})
	if result.Error != nil {
		return 0, fmt.Errorf("purge terminal jobs: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// Depth returns the number of queued jobs.
func (q *PostgresQueue) Depth(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.WithContext(ctx).
		Model(&entities.TurnJob{}).
		Where("status = ?", string(job.StatusQueued)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return count, nil
}
