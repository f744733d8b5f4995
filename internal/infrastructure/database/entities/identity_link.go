package entities

import (
	"time"

	"homehub/assistant-api/internal/domain/identity"
)

// IdentityLink binds one external platform account to an internal user.
type IdentityLink struct {
	ID             uint   `gorm:"primaryKey"`
	Platform       string `gorm:"size:32;uniqueIndex:idx_identity_platform_user;not null"`
	PlatformUserID string `gorm:"size:64;uniqueIndex:idx_identity_platform_user;not null"`
	UserID         string `gorm:"size:64;index;not null"`
	CreatedAt      time.Time
}

// TableName specifies the table name for IdentityLink.
func (IdentityLink) TableName() string {
	return "identity_links"
}

// EtoD converts the database entity to the domain model.
func (l *IdentityLink) EtoD() *identity.Link {
	return &identity.Link{
		ID:             l.ID,
		Platform:       l.Platform,
		PlatformUserID: l.PlatformUserID,
		UserID:         l.UserID,
		CreatedAt:      l.CreatedAt,
	}
}

// NewSchemaIdentityLink creates a database entity from the domain model.
func NewSchemaIdentityLink(l *identity.Link) *IdentityLink {
	return &IdentityLink{
		ID:             l.ID,
		Platform:       l.Platform,
		PlatformUserID: l.PlatformUserID,
		UserID:         l.UserID,
		CreatedAt:      l.CreatedAt,
	}
}
