package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gharbazaar/backend/internal/domain/entities"
	"github.com/gharbazaar/backend/internal/domain/providers"
	"github.com/gharbazaar/backend/internal/domain/repositories"
	"github.com/gharbazaar/backend/internal/infrastructure/observability"
	apperrors "github.com/gharbazaar/backend/pkg/errors"
)

// PropertyService handles business logic for listings. Mutations are
// authenticated: an empty principal is rejected before any side effect, and
// update/delete additionally require the caller to own the listing.
type PropertyService struct {
	repo       repositories.PropertyRepository
	searchRepo repositories.PropertySearchRepository
	eventBus   providers.EventBus

	// locks serializes mutations per listing id so two concurrent updates
	// can never interleave their read-check-write sequences.
	locks sync.Map
}

// NewPropertyService creates a new property service. searchRepo and eventBus
// may be nil; the service degrades to database-only operation.
func NewPropertyService(repo repositories.PropertyRepository, searchRepo repositories.PropertySearchRepository, eventBus providers.EventBus) *PropertyService {
	return &PropertyService{
		repo:       repo,
		searchRepo: searchRepo,
		eventBus:   eventBus,
	}
}

func (s *PropertyService) lockFor(id int64) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Create submits a new listing for the authenticated principal. The caller's
// timestamps are honored; missing ones default to now.
func (s *PropertyService) Create(ctx context.Context, principal string, property *entities.Property) (int64, error) {
	if principal == "" {
		return 0, apperrors.NewUnauthorizedError("authentication required to create a listing")
	}

	property.Owner = principal
	now := time.Now().UTC()
	if property.CreatedAt.IsZero() {
		property.CreatedAt = now
	}
	if property.ListingDate.IsZero() {
		property.ListingDate = property.CreatedAt
	}
	if property.UpdatedAt.IsZero() {
		property.UpdatedAt = property.CreatedAt
	}

	if err := property.Validate(); err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, property)
	if err != nil {
		return 0, err
	}

	s.index(ctx, property)
	s.publish(ctx, entities.EventPropertyCreated, property, fmt.Sprintf("New listing: %s", property.Title))

	return id, nil
}

// Update replaces a listing owned by the principal. Owner and creation time
// are immutable; the stored values win over whatever the caller sent.
func (s *PropertyService) Update(ctx context.Context, principal string, property *entities.Property) error {
	if principal == "" {
		return apperrors.NewUnauthorizedError("authentication required to update a listing")
	}

	mu := s.lockFor(property.ID)
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.repo.GetByID(ctx, property.ID)
	if err != nil {
		return err
	}
	if existing.Owner != principal {
		return apperrors.NewForbiddenError("only the listing owner may update it")
	}

	property.Owner = existing.Owner
	property.CreatedAt = existing.CreatedAt
	if property.UpdatedAt.IsZero() {
		property.UpdatedAt = time.Now().UTC()
	}

	if err := property.Validate(); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, property); err != nil {
		return err
	}

	s.index(ctx, property)
	s.publish(ctx, entities.EventPropertyUpdated, property, fmt.Sprintf("Listing updated: %s", property.Title))

	return nil
}

// Delete removes a listing owned by the principal
func (s *PropertyService) Delete(ctx context.Context, principal string, id int64) error {
	if principal == "" {
		return apperrors.NewUnauthorizedError("authentication required to delete a listing")
	}

	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Owner != principal {
		return apperrors.NewForbiddenError("only the listing owner may delete it")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Int64("property_id", id).Err(err).
				Msg("failed to remove listing from search index")
		}
	}
	s.publish(ctx, entities.EventPropertyDeleted, existing, fmt.Sprintf("Listing removed: %s", existing.Title))

	return nil
}

// GetByID retrieves a single listing
func (s *PropertyService) GetByID(ctx context.Context, id int64) (*entities.Property, error) {
	return s.repo.GetByID(ctx, id)
}

// GetAll retrieves every listing
func (s *PropertyService) GetAll(ctx context.Context) ([]*entities.Property, error) {
	return s.repo.GetAll(ctx)
}

// GetAvailable retrieves listings still on the market
func (s *PropertyService) GetAvailable(ctx context.Context) ([]*entities.Property, error) {
	return s.repo.GetAvailable(ctx)
}

// GetMyListings retrieves the authenticated principal's own listings.
// Anonymous callers get an error, not an empty list.
func (s *PropertyService) GetMyListings(ctx context.Context, principal string) ([]*entities.Property, error) {
	if principal == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required to view your listings")
	}
	return s.repo.GetByOwner(ctx, principal)
}

// Search retrieves listings matching a structured criteria set
func (s *PropertyService) Search(ctx context.Context, criteria *entities.SearchCriteria) ([]*entities.Property, error) {
	return s.repo.Search(ctx, criteria)
}

// SearchText runs a free-text query through the search index, hydrates the
// hits from the repository and applies the structured criteria on top. When
// no index is configured the structured search alone serves the request.
func (s *PropertyService) SearchText(ctx context.Context, query string, criteria *entities.SearchCriteria) ([]*entities.Property, error) {
	if s.searchRepo == nil || query == "" {
		return s.repo.Search(ctx, criteria)
	}

	ids, err := s.searchRepo.Search(ctx, query, 100)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Str("query", query).Err(err).
			Msg("search index unavailable, falling back to database")
		return s.repo.Search(ctx, criteria)
	}

	properties, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return criteria.Filter(properties), nil
}

// ReindexAll pushes every stored listing into the search index
func (s *PropertyService) ReindexAll(ctx context.Context) (int, error) {
	if s.searchRepo == nil {
		return 0, apperrors.NewInternalError("no search index configured", nil)
	}

	properties, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	indexed := 0
	for _, property := range properties {
		if err := s.searchRepo.Index(ctx, property); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Int64("property_id", property.ID).Err(err).
				Msg("failed to index listing")
			continue
		}
		indexed++
	}

	return indexed, nil
}

// index pushes a listing into the search engine, logging instead of failing
// the request when the index is unavailable.
func (s *PropertyService) index(ctx context.Context, property *entities.Property) {
	if s.searchRepo == nil {
		return
	}
	if err := s.searchRepo.Index(ctx, property); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Int64("property_id", property.ID).Err(err).
			Msg("failed to index listing")
	}
}

// publish emits a mutation event on the global and owner channels
func (s *PropertyService) publish(ctx context.Context, eventType entities.PropertyEventType, property *entities.Property, message string) {
	if s.eventBus == nil {
		return
	}

	event := &entities.PropertyEvent{
		ID:         uuid.New().String(),
		EventType:  eventType,
		PropertyID: property.ID,
		Owner:      property.Owner,
		Title:      property.Title,
		Message:    message,
		Timestamp:  time.Now().UTC(),
	}

	logger := observability.LoggerFromContext(ctx)
	if err := s.eventBus.Publish(ctx, providers.EventChannelPropertyUpdates, event); err != nil {
		logger.Warn().Str("event_id", event.ID).Err(err).Msg("failed to publish listing event")
	}
	if err := s.eventBus.Publish(ctx, providers.GetOwnerChannel(property.Owner), event); err != nil {
		logger.Warn().Str("event_id", event.ID).Err(err).Msg("failed to publish owner event")
	}
}
