package conversation

import (
	"context"

	"gorm.io/gorm"

	domain "homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/infrastructure/database/entities"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// ActionRepository persists the audit trail of executed tool calls.
type ActionRepository struct {
	db *gorm.DB
}

// NewActionRepository builds an action repository.
func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// Insert writes one audit row.
func (r *ActionRepository) Insert(ctx context.Context, action *domain.Action) error {
	entity := entities.NewSchemaAction(action)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to insert action",
			err,
			"d5a1e8c4-6b02-4d23-9cdb-4e2f9a6b5d81",
		)
	}
	action.ID = entity.ID
	action.CreatedAt = entity.CreatedAt
	return nil
}

// ListByConversationID returns the conversation's actions oldest first.
func (r *ActionRepository) ListByConversationID(ctx context.Context, conversationID uint) ([]domain.Action, error) {
	var rows []entities.Action
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list actions",
			err,
			"e6b2f9d5-7c13-4e34-8dec-5f3a0b7c6e92",
		)
	}

	result := make([]domain.Action, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}
