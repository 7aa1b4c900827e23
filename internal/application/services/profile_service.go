package services

import (
	"context"
	"time"

	"github.com/gharbazaar/backend/internal/domain/entities"
	"github.com/gharbazaar/backend/internal/domain/repositories"
	apperrors "github.com/gharbazaar/backend/pkg/errors"
)

// ProfileService handles business logic for user profiles
type ProfileService struct {
	repo repositories.ProfileRepository
}

// NewProfileService creates a new profile service
func NewProfileService(repo repositories.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Get retrieves the principal's profile. A missing profile is returned as
// (nil, nil) so callers can distinguish "no profile yet" from failures.
func (s *ProfileService) Get(ctx context.Context, principal string) (*entities.UserProfile, error) {
	if principal == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required to view profile")
	}

	profile, err := s.repo.Get(ctx, principal)
	if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Save creates or updates the principal's profile. New profiles start with
// the user role; existing roles are untouched.
func (s *ProfileService) Save(ctx context.Context, principal string, profile *entities.UserProfile) error {
	if principal == "" {
		return apperrors.NewUnauthorizedError("authentication required to save profile")
	}

	profile.Principal = principal
	if profile.Role == "" || !entities.ValidRole(profile.Role) {
		profile.Role = entities.RoleUser
	}

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	return s.repo.Save(ctx, profile)
}

// SetRole changes another user's role. Only admins may call this.
func (s *ProfileService) SetRole(ctx context.Context, callerRole entities.UserRole, principal string, role entities.UserRole) error {
	if callerRole != entities.RoleAdmin {
		return apperrors.NewForbiddenError("only admins may change roles")
	}
	if !entities.ValidRole(role) {
		return apperrors.NewValidationError("unknown role: " + string(role))
	}

	return s.repo.SetRole(ctx, principal, role)
}
