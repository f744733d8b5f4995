// Package identity provides the PostgreSQL persistence for platform
// identity links.
package identity

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "homehub/assistant-api/internal/domain/identity"
	"homehub/assistant-api/internal/infrastructure/database/entities"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// Repository persists identity links.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an identity repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find looks up the link for a platform account.
func (r *Repository) Find(ctx context.Context, platform, platformUserID string) (*domain.Link, error) {
	var entity entities.IdentityLink
	if err := r.db.WithContext(ctx).
		Where("platform = ? AND platform_user_id = ?", platform, platformUserID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				fmt.Sprintf("no identity link for %s user %s", platform, platformUserID),
				nil,
				"f7c3a0e6-8d24-4f45-9efd-6a4b1c8d7f03",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to fetch identity link",
			err,
			"a8d4b1f7-9e35-4a56-8fae-7b5c2d9e8a14",
		)
	}

	return entity.EtoD(), nil
}

// Upsert creates or replaces the link for a platform account.
func (r *Repository) Upsert(ctx context.Context, link *domain.Link) error {
	entity := entities.NewSchemaIdentityLink(link)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform"}, {Name: "platform_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id"}),
		}).
		Create(entity).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to upsert identity link",
			err,
			"b9e5c2a8-0f46-4b67-9abf-8c6d3e0f9b25",
		)
	}
	link.ID = entity.ID
	link.CreatedAt = entity.CreatedAt
	return nil
}
