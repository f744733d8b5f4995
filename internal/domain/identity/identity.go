// Package identity links chat-platform identities to internal users. A
// platform identity must resolve before any deferred turn is orchestrated.
package identity

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Platforms with identity links.
const PlatformSlack = "slack"

// Link binds an external platform identity to an internal user.
type Link struct {
	ID             uint      `json:"-"`
	Platform       string    `json:"platform"`
	PlatformUserID string    `json:"platform_user_id"`
	UserID         string    `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// Repository persists identity links.
type Repository interface {
	// Find returns the link for the platform identity; absence is a
	// NotFound platform error.
	Find(ctx context.Context, platform, platformUserID string) (*Link, error)
	Upsert(ctx context.Context, link *Link) error
}

// Resolver maps platform identities to internal user ids.
type Resolver struct {
	repo Repository
	log  zerolog.Logger
}

// NewResolver creates a resolver over the link repository.
func NewResolver(repo Repository, log zerolog.Logger) *Resolver {
	return &Resolver{
		repo: repo,
		log:  log.With().Str("component", "identity_resolver").Logger(),
	}
}

// Resolve returns the internal user id for the platform identity. An
// unlinked identity surfaces as the repository's NotFound error.
func (r *Resolver) Resolve(ctx context.Context, platform, platformUserID string) (string, error) {
	link, err := r.repo.Find(ctx, platform, platformUserID)
	if err != nil {
		return "", err
	}
	return link.UserID, nil
}

// Link provisions or updates the mapping for a platform identity.
func (r *Resolver) Link(ctx context.Context, platform, platformUserID, userID string) error {
	err := r.repo.Upsert(ctx, &Link{
		Platform:       platform,
		PlatformUserID: platformUserID,
		UserID:         userID,
	})
	if err != nil {
		return err
	}
	r.log.Info().
		Str("platform", platform).
		Str("platform_user_id", platformUserID).
		Str("user_id", userID).
		Msg("identity linked")
	return nil
}
