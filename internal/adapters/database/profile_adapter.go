package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/gharbazaar/backend/internal/domain/entities"
	"github.com/gharbazaar/backend/internal/domain/repositories"
	"github.com/gharbazaar/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/gharbazaar/backend/pkg/errors"
)

const profilesTable = "user_profiles"

// ProfileAdapter implements the ProfileRepository interface on Postgres
type ProfileAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProfileAdapter creates a new profile adapter
func NewProfileAdapter(client *postgres.Client) repositories.ProfileRepository {
	return &ProfileAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Get retrieves a profile by principal. A missing profile is a NotFound
// error; callers decide whether that is exceptional.
func (a *ProfileAdapter) Get(ctx context.Context, principal string) (*entities.UserProfile, error) {
	query, args, err := a.db.From(profilesTable).
		Select("principal", "name", "email", "phone", "role", "created_at", "updated_at").
		Where(goqu.C("principal").Eq(principal)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build profile query", err)
	}

	profile := &entities.UserProfile{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&profile.Principal,
		&profile.Name,
		&profile.Email,
		&profile.Phone,
		&profile.Role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("profile for %s not found", principal))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get profile", err)
	}

	return profile, nil
}

// Save upserts a profile keyed by principal. The role is only written on
// first insert; role changes go through SetRole.
func (a *ProfileAdapter) Save(ctx context.Context, profile *entities.UserProfile) error {
	query, args, err := a.db.Insert(profilesTable).
		Rows(goqu.Record{
			"principal":  profile.Principal,
			"name":       profile.Name,
			"email":      profile.Email,
			"phone":      profile.Phone,
			"role":       profile.Role,
			"created_at": profile.CreatedAt,
			"updated_at": profile.UpdatedAt,
		}).
		OnConflict(goqu.DoUpdate("principal", goqu.Record{
			"name":       profile.Name,
			"email":      profile.Email,
			"phone":      profile.Phone,
			"updated_at": profile.UpdatedAt,
		})).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build profile upsert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save profile", err)
	}

	return nil
}

// SetRole updates the role of an existing profile
func (a *ProfileAdapter) SetRole(ctx context.Context, principal string, role entities.UserRole) error {
	query, args, err := a.db.Update(profilesTable).
		Set(goqu.Record{"role": role}).
		Where(goqu.C("principal").Eq(principal)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build role update", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to set role", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("profile for %s not found", principal))
	}

	return nil
}
