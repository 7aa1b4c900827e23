package services_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gharbazaar/backend/internal/application/services"
	"github.com/gharbazaar/backend/internal/domain/entities"
	"github.com/gharbazaar/backend/internal/domain/providers"
)

// memoryCache records invalidations for assertions
type memoryCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	deleted  []string
	patterns []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("key not found: %s", key)
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	c.patterns = append(c.patterns, pattern)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *memoryCache) invalidations() ([]string, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.patterns...), append([]string(nil), c.deleted...)
}

// memoryEventBus delivers published events to in-process subscribers
type memoryEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.PropertyEvent
}

func newMemoryEventBus() *memoryEventBus {
	return &memoryEventBus{subscribers: make(map[string][]chan *entities.PropertyEvent)}
}

func (b *memoryEventBus) Publish(ctx context.Context, channel string, event *entities.PropertyEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers[channel] {
		ch <- event
	}
	return nil
}

func (b *memoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.PropertyEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *entities.PropertyEvent, 10)
	b.subscribers[channel] = append(b.subscribers[channel], ch)
	return ch, nil
}

func (b *memoryEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }
func (b *memoryEventBus) Close() error                                          { return nil }

func TestCacheInvalidationService_InvalidatesOnEvent(t *testing.T) {
	cache := newMemoryCache()
	bus := newMemoryEventBus()

	cache.Set(context.Background(), "properties:all", []byte("[]"), 0)
	cache.Set(context.Background(), "property:7", []byte("{}"), 0)

	service := services.NewCacheInvalidationService(cache, bus)
	assert.NoError(t, service.Start())
	defer service.Stop()

	err := bus.Publish(context.Background(), providers.EventChannelPropertyUpdates, &entities.PropertyEvent{
		ID:         "evt-1",
		EventType:  entities.EventPropertyUpdated,
		PropertyID: 7,
		Owner:      "user-1",
	})
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		patterns, deleted := cache.invalidations()
		return len(patterns) > 0 && len(deleted) > 0
	}, time.Second, 10*time.Millisecond)

	patterns, deleted := cache.invalidations()
	assert.Contains(t, patterns, "properties:*")
	assert.Contains(t, deleted, "property:7")

	_, err = cache.Get(context.Background(), "properties:all")
	assert.Error(t, err)
}
