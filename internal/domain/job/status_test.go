package job_test

import (
	"errors"
	"testing"

	"homehub/assistant-api/internal/domain/job"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		name     string
		status   job.Status
		expected bool
	}{
		{"queued is not terminal", job.StatusQueued, false},
		{"processing is not terminal", job.StatusProcessing, false},
		{"completed is terminal", job.StatusCompleted, true},
		{"failed is terminal", job.StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name  string
		from  job.Status
		to    job.Status
		canDo bool
	}{
		// Valid transitions from queued
		{"queued to processing", job.StatusQueued, job.StatusProcessing, true},
		{"queued to failed", job.StatusQueued, job.StatusFailed, true},
		{"queued to completed - invalid", job.StatusQueued, job.StatusCompleted, false},

		// Valid transitions from processing
		{"processing to completed", job.StatusProcessing, job.StatusCompleted, true},
		{"processing to failed", job.StatusProcessing, job.StatusFailed, true},
		{"processing to queued (stale requeue)", job.StatusProcessing, job.StatusQueued, true},

		// Requeue from failed
		{"failed to queued (requeue)", job.StatusFailed, job.StatusQueued, true},
		{"failed to processing - invalid", job.StatusFailed, job.StatusProcessing, false},

		// Completed is final
		{"completed to anything - invalid", job.StatusCompleted, job.StatusQueued, false},

		// Unknown states have no transitions
		{"unknown state - invalid", job.Status("limbo"), job.StatusQueued, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.canDo {
				t.Errorf("Status.CanTransitionTo() = %v, want %v", got, tt.canDo)
			}
		})
	}
}

func TestStatus_TransitionTo(t *testing.T) {
	got, err := job.StatusQueued.TransitionTo(job.StatusProcessing)
	if err != nil {
		t.Fatalf("TransitionTo() error = %v", err)
	}
	if got != job.StatusProcessing {
		t.Errorf("TransitionTo() = %v, want processing", got)
	}

	got, err = job.StatusCompleted.TransitionTo(job.StatusQueued)
	if !errors.Is(err, job.ErrInvalidTransition) {
		t.Errorf("TransitionTo() error = %v, want ErrInvalidTransition", err)
	}
	if got != job.StatusCompleted {
		t.Errorf("TransitionTo() = %v, want unchanged completed", got)
	}
}

func TestNewTurnJob(t *testing.T) {
	j := job.NewTurnJob("user-1", "slack", "Give me an overview of my tasks.", "https://hooks.example.com/cb")

	if j.Status != job.StatusQueued {
		t.Errorf("Status = %v, want queued", j.Status)
	}
	if j.PublicID == "" {
		t.Error("PublicID is empty")
	}
	if j.EnqueuedAt.IsZero() {
		t.Error("EnqueuedAt is zero")
	}
	if j.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", j.Attempts)
	}
}
