package repositories

import (
	"context"

	"github.com/gharbazaar/backend/internal/domain/entities"
)

// ProfileRepository defines the interface for user profile operations
type ProfileRepository interface {
	// Get retrieves a profile by principal; returns a not-found error when absent
	Get(ctx context.Context, principal string) (*entities.UserProfile, error)

	// Save creates or replaces the profile for its principal
	Save(ctx context.Context, profile *entities.UserProfile) error

	// SetRole updates only the role of a principal, creating a bare profile
	// when none exists yet
	SetRole(ctx context.Context, principal string, role entities.UserRole) error
}
