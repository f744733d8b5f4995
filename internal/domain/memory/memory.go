// Package memory stores long-term facts about a user. Facts are injected
// into the assistant's system prompt on every turn and written through the
// built-in remember_fact tool.
package memory

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/utils/platformerrors"
)

// Fact sources.
const (
	SourceTool = "tool"
	SourceSeed = "seed"
)

// MaxPromptFacts caps how many facts are injected into one system prompt.
const MaxPromptFacts = 20

// Fact is one remembered statement about a user.
type Fact struct {
	ID        uint      `json:"-"`
	UserID    string    `json:"user_id"`
	Fact      string    `json:"fact"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists facts.
type Repository interface {
	Insert(ctx context.Context, fact *Fact) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Fact, error)
}

// Service reads and writes the fact store.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService creates the fact service.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "memory_service").Logger(),
	}
}

// ListFacts returns the user's facts for prompt injection, newest first,
// capped at MaxPromptFacts.
func (s *Service) ListFacts(ctx context.Context, userID string) ([]Fact, error) {
	return s.repo.ListByUser(ctx, userID, MaxPromptFacts)
}

// Remember stores one fact for the user.
func (s *Service) Remember(ctx context.Context, userID, text string) (*Fact, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation, "fact must not be empty", nil,
			"9d2a6e83-4f1b-47c9-8e0d-2b5c7a9f3e61")
	}

	fact := &Fact{UserID: userID, Fact: text, Source: SourceTool}
	if err := s.repo.Insert(ctx, fact); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Msg("fact remembered")
	return fact, nil
}
