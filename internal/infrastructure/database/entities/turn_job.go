package entities

import (
	"time"

	"homehub/assistant-api/internal/domain/job"
)

// TurnJob persists one queued deferred turn.
type TurnJob struct {
	ID          uint       `gorm:"primaryKey"`
	PublicID    string     `gorm:"size:64;uniqueIndex;not null"`
	UserID      string     `gorm:"size:64;index;not null"`
	Channel     string     `gorm:"size:16;not null"`
	Instruction string     `gorm:"type:text;not null"`
	CallbackURL string     `gorm:"type:text"`
	Status      string     `gorm:"size:32;index;not null"`
	Attempts    int        `gorm:"not null;default:0"`
	Error       string     `gorm:"type:text"`
	ResultText  string     `gorm:"type:text"`
	EnqueuedAt  time.Time  `gorm:"index;not null"`
	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for TurnJob.
func (TurnJob) TableName() string {
	return "turn_jobs"
}

// EtoD converts the database entity to the domain model.
func (t *TurnJob) EtoD() *job.TurnJob {
	return &job.TurnJob{
		ID:          t.ID,
		PublicID:    t.PublicID,
		UserID:      t.UserID,
		Channel:     t.Channel,
		Instruction: t.Instruction,
		CallbackURL: t.CallbackURL,
		Status:      job.Status(t.Status),
		Attempts:    t.Attempts,
		Error:       t.Error,
		ResultText:  t.ResultText,
		EnqueuedAt:  t.EnqueuedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
}

// NewSchemaTurnJob creates a database entity from the domain model.
func NewSchemaTurnJob(t *job.TurnJob) *TurnJob {
	return &TurnJob{
		ID:          t.ID,
		PublicID:    t.PublicID,
		UserID:      t.UserID,
		Channel:     t.Channel,
		Instruction: t.Instruction,
		CallbackURL: t.CallbackURL,
		Status:      string(t.Status),
		Attempts:    t.Attempts,
		Error:       t.Error,
		ResultText:  t.ResultText,
		EnqueuedAt:  t.EnqueuedAt,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
}
