// Package job models deferred turns: slash-command work queued for
// asynchronous execution and callback delivery.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TurnJob is one queued deferred turn. The instruction is the
// natural-language translation of the platform's structured command; the
// callback URL is the one-time delivery target tied to the inbound event.
type TurnJob struct {
	ID          uint       `json:"-"`
	PublicID    string     `json:"id"`
	UserID      string     `json:"user_id"`
	Channel     string     `json:"channel"`
	Instruction string     `json:"instruction"`
	CallbackURL string     `json:"-"`
	Status      Status     `json:"status"`
	Attempts    int        `json:"attempts"`
	Error       string     `json:"error,omitempty"`
	ResultText  string     `json:"result_text,omitempty"`
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewTurnJob builds an unpersisted queued job.
func NewTurnJob(userID, channel, instruction, callbackURL string) *TurnJob {
	return &TurnJob{
		PublicID:    fmt.Sprintf("job_%s", uuid.NewString()),
		UserID:      userID,
		Channel:     channel,
		Instruction: instruction,
		CallbackURL: callbackURL,
		Status:      StatusQueued,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// Queue is the persistence-backed work queue for deferred turns.
type Queue interface {
	Enqueue(ctx context.Context, j *TurnJob) error
	// Dequeue claims the oldest queued job in one statement, marking it
	// processing and incrementing attempts, or returns (nil, nil) when the
	// queue is empty. Claiming and reading must be atomic so two workers
	// never pick up the same job.
	Dequeue(ctx context.Context) (*TurnJob, error)
	MarkCompleted(ctx context.Context, publicID, resultText string) error
	MarkFailed(ctx context.Context, publicID, errMsg string) error
	// RequeueStale returns processing jobs stuck longer than olderThan to
	// the queue; jobs at maxAttempts fail instead.
	RequeueStale(ctx context.Context, olderThan time.Duration, maxAttempts int) (int, error)
	// PurgeTerminal deletes completed and failed jobs older than olderThan.
	PurgeTerminal(ctx context.Context, olderThan time.Duration) (int, error)
	Depth(ctx context.Context) (int64, error)
}
