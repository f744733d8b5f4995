package identity_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/identity"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// MockRepository is a mock implementation of identity.Repository.
type MockRepository struct {
	FindFunc   func(ctx context.Context, platform, platformUserID string) (*identity.Link, error)
	UpsertFunc func(ctx context.Context, link *identity.Link) error
}

func (m *MockRepository) Find(ctx context.Context, platform, platformUserID string) (*identity.Link, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, platform, platformUserID)
	}
	return nil, nil
}

func (m *MockRepository) Upsert(ctx context.Context, link *identity.Link) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, link)
	}
	return nil
}

func TestResolver_Resolve(t *testing.T) {
	var gotPlatform, gotPlatformUser string
	repo := &MockRepository{
		FindFunc: func(ctx context.Context, platform, platformUserID string) (*identity.Link, error) {
			gotPlatform = platform
			gotPlatformUser = platformUserID
			return &identity.Link{
				Platform:       platform,
				PlatformUserID: platformUserID,
				UserID:         "user-1",
			}, nil
		},
	}

	resolver := identity.NewResolver(repo, zerolog.Nop())
	userID, err := resolver.Resolve(context.Background(), identity.PlatformSlack, "U0123456")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if userID != "user-1" {
		t.Errorf("userID = %q, want user-1", userID)
	}
	if gotPlatform != identity.PlatformSlack || gotPlatformUser != "U0123456" {
		t.Errorf("repo queried with (%q, %q)", gotPlatform, gotPlatformUser)
	}
}

func TestResolver_Resolve_Unlinked(t *testing.T) {
	repo := &MockRepository{
		FindFunc: func(ctx context.Context, platform, platformUserID string) (*identity.Link, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound, "identity link not found", nil, "")
		},
	}

	resolver := identity.NewResolver(repo, zerolog.Nop())
	_, err := resolver.Resolve(context.Background(), identity.PlatformSlack, "U_UNKNOWN")

	if err == nil {
		t.Fatal("Expected an error for an unlinked identity")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		t.Errorf("error type = %v, want NotFound", err)
	}
}

func TestResolver_Link(t *testing.T) {
	var saved *identity.Link
	repo := &MockRepository{
		UpsertFunc: func(ctx context.Context, link *identity.Link) error {
			saved = link
			return nil
		},
	}

	resolver := identity.NewResolver(repo, zerolog.Nop())
	if err := resolver.Link(context.Background(), identity.PlatformSlack, "U0123456", "user-1"); err != nil {
		t.Fatalf("Link() error = %v", err)
	}

	if saved == nil {
		t.Fatal("Expected the link to be upserted")
	}
	if saved.Platform != identity.PlatformSlack || saved.PlatformUserID != "U0123456" || saved.UserID != "user-1" {
		t.Errorf("saved link = %+v", saved)
	}
}
