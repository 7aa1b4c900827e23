package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gharbazaar/backend/internal/domain/entities"
	"github.com/gharbazaar/backend/internal/domain/providers"
	"github.com/gharbazaar/backend/internal/infrastructure/observability"
)

// CacheInvalidationService drops cached listing data when another instance
// publishes a mutation event. The mutating instance invalidates its cache
// synchronously; this service keeps every other instance consistent.
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelPropertyUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to listing updates: %w", err)
	}

	go s.processEvents(eventChan)
	observability.GetLogger().Info().Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	observability.GetLogger().Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.PropertyEvent) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent invalidates the listing family plus the single-listing entry
// named by the event.
func (s *CacheInvalidationService) handleEvent(event *entities.PropertyEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := observability.GetLogger()
	if err := s.cache.DeletePattern(ctx, "properties:*"); err != nil {
		logger.Warn().Str("event_id", event.ID).Err(err).
			Msg("failed to invalidate listing cache family")
	}
	if err := s.cache.Delete(ctx, fmt.Sprintf("property:%d", event.PropertyID)); err != nil {
		logger.Warn().Int64("property_id", event.PropertyID).Err(err).
			Msg("failed to invalidate listing cache entry")
	}
}
