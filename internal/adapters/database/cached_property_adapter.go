package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/gharbazaar/backend/internal/domain/entities"
	"github.com/gharbazaar/backend/internal/domain/providers"
	"github.com/gharbazaar/backend/internal/domain/repositories"
	"github.com/gharbazaar/backend/internal/infrastructure/observability"
)

// CachedPropertyAdapter wraps a PropertyRepository with a keyed cache.
//
// Every read is addressed by the identity of its query; entries carry no TTL
// and stay valid until a mutation invalidates them. Create invalidates the
// whole "properties" family, update and delete additionally drop the
// "property:<id>" entry. Invalidation completes before the mutation returns,
// so a read issued after a successful mutation always refetches.
type CachedPropertyAdapter struct {
	adapter repositories.PropertyRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics

	group singleflight.Group

	// generation is bumped on every invalidation. A fetched result is only
	// written back to the cache when the generation observed before the
	// fetch is still current, so a slow read that raced a mutation can
	// never re-populate the cache with stale data.
	generation atomic.Uint64
}

// NewCachedPropertyAdapter creates a caching decorator over adapter. metrics
// may be nil.
func NewCachedPropertyAdapter(adapter repositories.PropertyRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.PropertyRepository {
	return &CachedPropertyAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

// Cache key generators. The key layout is part of the API contract: the
// "properties:" prefix forms one invalidation family.
func propertyCacheKey(id int64) string {
	return fmt.Sprintf("property:%d", id)
}

func allPropertiesCacheKey() string {
	return "properties:all"
}

func availablePropertiesCacheKey() string {
	return "properties:available"
}

func ownerPropertiesCacheKey(owner string) string {
	return fmt.Sprintf("properties:owner:%s", owner)
}

func searchPropertiesCacheKey(criteria *entities.SearchCriteria) string {
	return fmt.Sprintf("properties:search:%s", criteria.CacheKey())
}

// GetByID retrieves a listing by id with caching
func (a *CachedPropertyAdapter) GetByID(ctx context.Context, id int64) (*entities.Property, error) {
	key := propertyCacheKey(id)

	if cached, err := a.cache.Get(ctx, key); err == nil {
		var property entities.Property
		if err := json.Unmarshal(cached, &property); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "property")
			return &property, nil
		}
	}
	observability.RecordCacheMiss(ctx, a.metrics, "property")

	result, err, _ := a.group.Do(key, func() (interface{}, error) {
		gen := a.generation.Load()
		property, err := a.adapter.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		a.writeBack(ctx, key, gen, property)
		return property, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*entities.Property), nil
}

// GetByIDs is a hydration path for full-text search results; it goes straight
// to the underlying repository and takes no part in the keyed cache contract.
func (a *CachedPropertyAdapter) GetByIDs(ctx context.Context, ids []int64) ([]*entities.Property, error) {
	return a.adapter.GetByIDs(ctx, ids)
}

// GetAll retrieves every listing with caching
func (a *CachedPropertyAdapter) GetAll(ctx context.Context) ([]*entities.Property, error) {
	return a.cachedList(ctx, allPropertiesCacheKey(), func(ctx context.Context) ([]*entities.Property, error) {
		return a.adapter.GetAll(ctx)
	})
}

// GetAvailable retrieves available listings with caching
func (a *CachedPropertyAdapter) GetAvailable(ctx context.Context) ([]*entities.Property, error) {
	return a.cachedList(ctx, availablePropertiesCacheKey(), func(ctx context.Context) ([]*entities.Property, error) {
		return a.adapter.GetAvailable(ctx)
	})
}

// GetByOwner retrieves one owner's listings with caching
func (a *CachedPropertyAdapter) GetByOwner(ctx context.Context, owner string) ([]*entities.Property, error) {
	return a.cachedList(ctx, ownerPropertiesCacheKey(owner), func(ctx context.Context) ([]*entities.Property, error) {
		return a.adapter.GetByOwner(ctx, owner)
	})
}

// Search retrieves listings matching the criteria with caching, keyed by the
// canonical criteria serialization
func (a *CachedPropertyAdapter) Search(ctx context.Context, criteria *entities.SearchCriteria) ([]*entities.Property, error) {
	return a.cachedList(ctx, searchPropertiesCacheKey(criteria), func(ctx context.Context) ([]*entities.Property, error) {
		return a.adapter.Search(ctx, criteria)
	})
}

// Create persists a listing and invalidates the whole properties family
func (a *CachedPropertyAdapter) Create(ctx context.Context, property *entities.Property) (int64, error) {
	id, err := a.adapter.Create(ctx, property)
	if err != nil {
		return 0, err
	}

	a.invalidate(ctx)
	return id, nil
}

// Update replaces a listing and invalidates the family plus its own entry
func (a *CachedPropertyAdapter) Update(ctx context.Context, property *entities.Property) error {
	if err := a.adapter.Update(ctx, property); err != nil {
		return err
	}

	a.invalidate(ctx, propertyCacheKey(property.ID))
	return nil
}

// Delete removes a listing and invalidates the family plus its own entry
func (a *CachedPropertyAdapter) Delete(ctx context.Context, id int64) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}

	a.invalidate(ctx, propertyCacheKey(id))
	return nil
}

// cachedList is the shared read path for list-shaped queries. Concurrent
// reads under the same key share one in-flight fetch.
func (a *CachedPropertyAdapter) cachedList(ctx context.Context, key string, fetch func(context.Context) ([]*entities.Property, error)) ([]*entities.Property, error) {
	if cached, err := a.cache.Get(ctx, key); err == nil {
		var properties []*entities.Property
		unmarshalErr := json.Unmarshal(cached, &properties)
		if unmarshalErr == nil {
			observability.RecordCacheHit(ctx, a.metrics, "properties")
			return properties, nil
		}
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Str("key", key).Err(unmarshalErr).Msg("failed to unmarshal cached listings")
	}
	observability.RecordCacheMiss(ctx, a.metrics, "properties")

	result, err, _ := a.group.Do(key, func() (interface{}, error) {
		gen := a.generation.Load()
		properties, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		a.writeBack(ctx, key, gen, properties)
		return properties, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]*entities.Property), nil
}

// writeBack stores a fetched value unless an invalidation happened while the
// fetch was in flight.
func (a *CachedPropertyAdapter) writeBack(ctx context.Context, key string, gen uint64, value interface{}) {
	if a.generation.Load() != gen {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := a.cache.Set(ctx, key, data, 0); err != nil {
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Str("key", key).Err(err).Msg("failed to cache listings")
	}
}

// invalidate drops the properties family and any extra keys, bumping the
// generation first so in-flight fetches discard their results.
func (a *CachedPropertyAdapter) invalidate(ctx context.Context, extraKeys ...string) {
	a.generation.Add(1)

	logger := observability.LoggerFromContext(ctx)
	if err := a.cache.DeletePattern(ctx, "properties:*"); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate properties cache family")
	}
	for _, key := range extraKeys {
		if err := a.cache.Delete(ctx, key); err != nil {
			logger.Warn().Str("key", key).Err(err).Msg("failed to invalidate cache entry")
		}
	}
}
