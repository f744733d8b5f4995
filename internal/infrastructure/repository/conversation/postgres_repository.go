// Package conversation provides the PostgreSQL persistence for
// conversations, messages and actions.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/infrastructure/database/entities"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// Repository persists conversation metadata.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the conversation record.
func (r *Repository) Create(ctx context.Context, conv *domain.Conversation) error {
	entity := entities.NewSchemaConversation(conv)

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create conversation",
			err,
			"b1e7a4c9-0d2f-4b83-9a61-5c7e8f2d4a09",
		)
	}

	conv.ID = entity.ID
	conv.CreatedAt = entity.CreatedAt
	conv.UpdatedAt = entity.UpdatedAt
	return nil
}

// FindByPublicID fetches a conversation by its public ID.
func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("conversation not found: %s", publicID),
				nil,
				"c8f2d5b1-3a7e-4c90-8b64-1d9e6f3a2c58",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation",
			err,
			"d3a9e6c2-4b8f-4d01-9c75-2e0f7a4b3d69",
		)
	}

	return entity.EtoD(), nil
}

// FindLatestByUserChannel fetches the user's most recently active
// conversation on a channel.
func (r *Repository) FindLatestByUserChannel(ctx context.Context, userID, channel string) (*domain.Conversation, error) {
	var entity entities.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND channel = ?", userID, channel).
		Order("last_message_at DESC").
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("no conversation for user on channel %s", channel),
				nil,
				"e4b0f7d3-5c91-4e12-8d86-3f1a8b5c4e70",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch conversation",
			err,
			"f5c1a8e4-6d02-4f23-9e97-4a2b9c6d5f81",
		)
	}

	return entity.EtoD(), nil
}

// ListByUser fetches the user's conversations, most recently active first.
func (r *Repository) ListByUser(ctx context.Context, userID string, p domain.Pagination) ([]domain.Conversation, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_message_at DESC")

	if p.Page > 0 && p.PageSize > 0 {
		query = query.Offset((p.Page - 1) * p.PageSize).Limit(p.PageSize)
	}

	var rows []entities.Conversation
	if err := query.Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list conversations",
			err,
			"a6d2b9f5-7e13-4a34-8fa8-5b3c0d7e6a92",
		)
	}

	result := make([]domain.Conversation, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result, nil
}

// UpdateSummary replaces the stored summary.
func (r *Repository) UpdateSummary(ctx context.Context, id uint, summary string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("summary", summary)
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update summary",
			result.Error,
			"b7e3c0a6-8f24-4b45-9ab9-6c4d1e8f7b03",
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %d", id),
			nil,
			"c8f4d1b7-9a35-4c56-8bca-7d5e2f9a8c14",
		)
	}
	return nil
}

// TouchLastMessageAt bumps the activity timestamp.
func (r *Repository) TouchLastMessageAt(ctx context.Context, id uint, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to touch conversation",
			err,
			"d9a5e2c8-0b46-4d67-9cdb-8e6f3a0b9d25",
		)
	}
	return nil
}
