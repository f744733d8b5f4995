package job

import "errors"

// Status represents the lifecycle state of a deferred turn.
type Status string

const (
	// Non-terminal states
	StatusQueued     Status = "queued"     // Enqueued, waiting for a worker
	StatusProcessing Status = "processing" // Claimed, turn running

	// Terminal states (no further transitions except failed → queued requeue)
	StatusCompleted Status = "completed" // Turn finished, callback attempted
	StatusFailed    Status = "failed"    // Turn or delivery gave up
)

// ErrInvalidTransition is returned when a status transition is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ValidTransitions defines allowed status transitions.
var ValidTransitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusQueued},
	StatusCompleted:  {},
	StatusFailed:     {StatusQueued}, // Requeue allowed
}

// CanTransitionTo checks if a transition from the current status to the
// target status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	validTargets, ok := ValidTransitions[s]
	if !ok {
		return false
	}
	for _, t := range validTargets {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionTo attempts to transition to the target status and returns an
// error if invalid.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, ErrInvalidTransition
	}
	return target, nil
}
