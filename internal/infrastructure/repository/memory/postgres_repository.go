// Package memory provides the PostgreSQL persistence for long-term user
// facts.
package memory

import (
	"context"

	"gorm.io/gorm"

	domain "homehub/assistant-api/internal/domain/memory"
	"homehub/assistant-api/internal/infrastructure/database/entities"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// Repository persists memory facts.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a memory repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one fact.
func (r *Repository) Insert(ctx context.Context, fact *domain.Fact) error {
	entity := entities.NewSchemaMemoryFact(fact)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to insert memory fact",
			err,
			"c0f6d3b9-1a57-4c78-8bca-9d7e4f1a0c36",
		)
	}
	fact.ID = entity.ID
	fact.CreatedAt = entity.CreatedAt
	return nil
}

// ListByUser returns the user's newest facts first, capped at limit.
func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Fact, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []entities.MemoryFact
	if err := query.Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list memory facts",
			err,
			"d1a7e4c0-2b68-4d89-9cdb-0e8f5a2b1d47",
		)
	}

	result := make([]domain.Fact, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}
