package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/job"
	"homehub/assistant-api/internal/domain/turn"
	"homehub/assistant-api/internal/infrastructure/metrics"
	"homehub/assistant-api/internal/infrastructure/observability"
	"homehub/assistant-api/internal/webhook"
)

// FailureNotice is posted back to the requester when a deferred turn fails.
const FailureNotice = "Sorry, I could not finish that request. Please try again."

// Worker drains deferred turns from the queue and delivers their results.
type Worker struct {
	id           int
	queue        job.Queue
	turns        turn.Service
	sessions     conversation.Service
	notifier     webhook.Notifier
	taskTimeout  time.Duration
	pollInterval time.Duration
	log          zerolog.Logger
	stopChan     chan struct{}
}

// NewWorker creates a new background worker.
func NewWorker(
	id int,
	queue job.Queue,
	turns turn.Service,
	sessions conversation.Service,
	notifier webhook.Notifier,
	taskTimeout time.Duration,
	pollInterval time.Duration,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		id:           id,
		queue:        queue,
		turns:        turns,
		sessions:     sessions,
		notifier:     notifier,
		taskTimeout:  taskTimeout,
		pollInterval: pollInterval,
		log:          log.With().Int("worker_id", id).Str("component", "worker").Logger(),
		stopChan:     make(chan struct{}),
	}
}

// Start begins polling the queue until the context or Stop ends it.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("worker started")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker stopped by context")
			return
		case <-w.stopChan:
			w.log.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			w.processNextJob(ctx)
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
}

func (w *Worker) processNextJob(ctx context.Context) {
	j, err := w.queue.Dequeue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to dequeue job")
		return
	}
	if j == nil {
		return
	}

	w.log.Info().
		Str("job_id", j.PublicID).
		Str("user_id", j.UserID).
		Str("channel", j.Channel).
		Int("attempt", j.Attempts).
		Msg("processing deferred turn")

	start := time.Now()
	jobCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()

	result, err := w.executeJob(jobCtx, j)
	if err != nil {
		w.log.Error().Err(err).Str("job_id", j.PublicID).Msg("deferred turn failed")
		// The parent context survives a per-job timeout, so bookkeeping and
		// the failure callback still go out.
		if markErr := w.queue.MarkFailed(ctx, j.PublicID, err.Error()); markErr != nil {
			w.log.Error().Err(markErr).Str("job_id", j.PublicID).Msg("failed to mark job failed")
		}
		metrics.RecordBackgroundJob("deferred_turn", "failed")
		metrics.RecordTurn(j.Channel, "unknown", "error", 0, time.Since(start).Seconds())
		if notifyErr := w.notifier.NotifyFailure(ctx, j.CallbackURL, FailureNotice); notifyErr != nil {
			w.log.Error().Err(notifyErr).Str("job_id", j.PublicID).Msg("failure callback not delivered")
		}
		return
	}

	if err := w.queue.MarkCompleted(ctx, j.PublicID, result.ResponseText); err != nil {
		w.log.Error().Err(err).Str("job_id", j.PublicID).Msg("failed to mark job completed")
	}
	metrics.RecordBackgroundJob("deferred_turn", "completed")
	metrics.RecordTurn(j.Channel, string(result.Tier), turnOutcome(result), result.ToolRounds, time.Since(start).Seconds())
	metrics.RecordUsage(string(result.Tier), result.Usage.InputTokens, result.Usage.OutputTokens, result.CostCents.InexactFloat64())
	if result.Degraded {
		metrics.RecordRoundLimit()
	}

	if err := w.notifier.NotifyResult(ctx, j.CallbackURL, result.ResponseText); err != nil {
		w.log.Error().Err(err).Str("job_id", j.PublicID).Msg("result callback not delivered")
	}

	w.log.Info().
		Str("job_id", j.PublicID).
		Str("conversation_id", result.ConversationPublicID).
		Dur("duration", time.Since(start)).
		Msg("deferred turn completed")
}

// executeJob resolves the user's active conversation on the job's channel
// and runs the turn against it.
func (w *Worker) executeJob(ctx context.Context, j *job.TurnJob) (*turn.Result, error) {
	ctx, span := observability.StartJobSpan(ctx, j.PublicID, j.Channel)
	defer span.End()

	conv, err := w.sessions.ResolveForChannel(ctx, j.UserID, j.Channel)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	result, err := w.turns.Run(ctx, turn.RunParams{
		ConversationPublicID: conv.PublicID,
		UserID:               j.UserID,
		Channel:              j.Channel,
		Message:              j.Instruction,
	})
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

func turnOutcome(result *turn.Result) string {
	if result.Degraded {
		return "degraded"
	}
	return "completed"
}
