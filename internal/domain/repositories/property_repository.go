package repositories

import (
	"context"

	"github.com/gharbazaar/backend/internal/domain/entities"
)

// PropertyRepository defines the interface for listing data operations
type PropertyRepository interface {
	// Create persists a new listing and assigns its id
	Create(ctx context.Context, property *entities.Property) (int64, error)

	// GetByID retrieves a listing by id
	GetByID(ctx context.Context, id int64) (*entities.Property, error)

	// GetByIDs retrieves multiple listings by their ids
	GetByIDs(ctx context.Context, ids []int64) ([]*entities.Property, error)

	// Update replaces a listing record in full
	Update(ctx context.Context, property *entities.Property) error

	// Delete removes a listing irreversibly
	Delete(ctx context.Context, id int64) error

	// GetAll retrieves every listing
	GetAll(ctx context.Context) ([]*entities.Property, error)

	// GetAvailable retrieves listings with status = available
	GetAvailable(ctx context.Context) ([]*entities.Property, error)

	// GetByOwner retrieves listings created by the given principal
	GetByOwner(ctx context.Context, owner string) ([]*entities.Property, error)

	// Search retrieves listings matching the criteria; nil criteria means all
	Search(ctx context.Context, criteria *entities.SearchCriteria) ([]*entities.Property, error)
}

// PropertySearchRepository defines the interface for the full-text listing
// index (e.g. Typesense). It complements, never replaces, criteria search.
type PropertySearchRepository interface {
	// Search returns the ids of listings whose text fields match the query
	Search(ctx context.Context, query string, limit int) ([]int64, error)

	// Index adds or refreshes a listing in the index
	Index(ctx context.Context, property *entities.Property) error

	// Delete removes a listing from the index
	Delete(ctx context.Context, id int64) error
}
