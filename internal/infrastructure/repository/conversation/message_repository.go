package conversation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	domain "homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/infrastructure/database/entities"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// MessageRepository persists message rows. Sequence numbers are assigned
// under the conversation row lock so concurrent writers cannot interleave.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository builds a message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Insert writes one message, assigning the next sequence and bumping
// last_message_at in the same transaction.
func (r *MessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	return r.insertLocked(ctx, msg.ConversationID, []*domain.Message{msg}, true)
}

// BulkInsert writes the turn's accumulated rows in order with consecutive
// sequence numbers. All messages must target the same conversation.
func (r *MessageRepository) BulkInsert(ctx context.Context, msgs []domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	refs := make([]*domain.Message, len(msgs))
	for i := range msgs {
		refs[i] = &msgs[i]
	}
	return r.insertLocked(ctx, msgs[0].ConversationID, refs, false)
}

func (r *MessageRepository) insertLocked(ctx context.Context, conversationID uint, msgs []*domain.Message, touch bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lockedID uint
		if err := tx.Raw("SELECT id FROM conversations WHERE id = ? FOR UPDATE", conversationID).
			Scan(&lockedID).Error; err != nil {
			return err
		}
		if lockedID == 0 {
			return gorm.ErrRecordNotFound
		}

		var maxSequence int
		if err := tx.Raw("SELECT COALESCE(MAX(sequence), 0) FROM messages WHERE conversation_id = ?", conversationID).
			Scan(&maxSequence).Error; err != nil {
			return err
		}

		for i, msg := range msgs {
			msg.Sequence = maxSequence + i + 1
			entity, err := entities.NewSchemaMessage(msg)
			if err != nil {
				return err
			}
			if err := tx.Create(entity).Error; err != nil {
				return err
			}
			msg.ID = entity.ID
			msg.CreatedAt = entity.CreatedAt
		}

		if touch {
			return tx.Model(&entities.Conversation{}).
				Where("id = ?", conversationID).
				Update("last_message_at", time.Now().UTC()).Error
		}
		return nil
	})
	if err == nil {
		return nil
	}

	if err == gorm.ErrRecordNotFound {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			fmt.Sprintf("conversation not found: %d", conversationID),
			nil,
			"e0b6f3d9-1c57-4e78-8dec-9f7a4b1c0e36",
		)
	}
	return platformerrors.NewError(
		ctx,
		platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError,
		"failed to insert messages",
		err,
		"f1c7a4e0-2d68-4f89-9efd-0a8b5c2d1f47",
	)
}

// ListRecent returns the newest limit messages in chronological order.
func (r *MessageRepository) ListRecent(ctx context.Context, conversationID uint, limit int) ([]domain.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sequence DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list recent messages",
			err,
			"a2d8b5f1-3e79-4a90-8fae-1b9c6d3e2a58",
		)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Sequence < rows[j].Sequence })
	return r.toDomain(ctx, rows)
}

// ListByConversationID returns all messages in chronological order.
func (r *MessageRepository) ListByConversationID(ctx context.Context, conversationID uint) ([]domain.Message, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sequence ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list messages",
			err,
			"b3e9c6a2-4f80-4b01-9abf-2c0d7e4f3b69",
		)
	}

	return r.toDomain(ctx, rows)
}

func (r *MessageRepository) toDomain(ctx context.Context, rows []entities.Message) ([]domain.Message, error) {
	result := make([]domain.Message, 0, len(rows))
	for i := range rows {
		msg, err := rows[i].EtoD()
		if err != nil {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError,
				"failed to decode message tool calls",
				err,
				"c4f0d7b3-5a91-4c12-8bca-3d1e8f5a4c70",
			)
		}
		result = append(result, *msg)
	}
	return result, nil
}
