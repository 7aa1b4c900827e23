package database_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gharbazaar/backend/internal/adapters/database"
	"github.com/gharbazaar/backend/internal/domain/entities"
)

// stubCache is an in-memory CacheProvider that records invalidations
type stubCache struct {
	mu       sync.RWMutex
	data     map[string][]byte
	sets     int
	deleted  []string
	patterns []string
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (c *stubCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if val, ok := c.data[key]; ok {
		return val, nil
	}
	return nil, fmt.Errorf("key not found: %s", key)
}

func (c *stubCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.sets++
	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *stubCache) DeletePattern(ctx context.Context, pattern string) error {
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

func (c *stubCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *stubCache) has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[key]
	return ok
}

// stubRepo is an in-memory PropertyRepository that counts remote reads and
// can stall them for race tests
type stubRepo struct {
	mu         sync.Mutex
	nextID     int64
	properties map[int64]*entities.Property
	reads      int
	block      chan struct{}
}

func newStubRepo() *stubRepo {
	return &stubRepo{nextID: 1, properties: make(map[int64]*entities.Property)}
}

func (r *stubRepo) wait() {
	if r.block != nil {
		<-r.block
	}
}

func (r *stubRepo) countRead() {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
}

func (r *stubRepo) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func (r *stubRepo) snapshot() []*entities.Property {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entities.Property, 0, len(r.properties))
	for _, p := range r.properties {
		out = append(out, p)
	}
	return out
}

func (r *stubRepo) Create(ctx context.Context, p *entities.Property) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	r.properties[p.ID] = p
	return p.ID, nil
}

func (r *stubRepo) GetByID(ctx context.Context, id int64) (*entities.Property, error) {
	r.countRead()
	r.wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.properties[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("not found")
}

func (r *stubRepo) GetByIDs(ctx context.Context, ids []int64) ([]*entities.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entities.Property{}
	for _, id := range ids {
		if p, ok := r.properties[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubRepo) Update(ctx context.Context, p *entities.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.properties[p.ID] = p
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.properties, id)
	return nil
}

func (r *stubRepo) GetAll(ctx context.Context) ([]*entities.Property, error) {
	r.countRead()
	r.wait()
	return r.snapshot(), nil
}

func (r *stubRepo) GetAvailable(ctx context.Context) ([]*entities.Property, error) {
	r.countRead()
	return r.snapshot(), nil
}

func (r *stubRepo) GetByOwner(ctx context.Context, owner string) ([]*entities.Property, error) {
	r.countRead()
	return r.snapshot(), nil
}

func (r *stubRepo) Search(ctx context.Context, criteria *entities.SearchCriteria) ([]*entities.Property, error) {
	r.countRead()
	return criteria.Filter(r.snapshot()), nil
}

func seedListing(t *testing.T, repo *stubRepo, city string) *entities.Property {
	t.Helper()
	p := &entities.Property{
		Owner:        "user-1",
		Title:        "Listing in " + city,
		PropertyType: entities.TypeApartment,
		Status:       entities.StatusAvailable,
		Price:        10_000_000,
		Location:     entities.Location{City: city, Area: "Central"},
	}
	_, err := repo.Create(context.Background(), p)
	assert.NoError(t, err)
	return p
}

func TestCachedAdapter_ReadThrough(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	cache := newStubCache()
	seedListing(t, repo, "Mumbai")

	adapter := database.NewCachedPropertyAdapter(repo, cache, nil)

	first, err := adapter.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Equal(t, 1, repo.readCount())

	second, err := adapter.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, second, 1)
	assert.Equal(t, 1, repo.readCount(), "second read must be served from cache")
}

func TestCachedAdapter_DistinctKeysPerQuery(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	cache := newStubCache()
	p := seedListing(t, repo, "Mumbai")

	adapter := database.NewCachedPropertyAdapter(repo, cache, nil)

	_, _ = adapter.GetAll(ctx)
	_, _ = adapter.GetAvailable(ctx)
	_, _ = adapter.GetByOwner(ctx, "user-1")
	_, _ = adapter.GetByID(ctx, p.ID)
	criteria := entities.BuildCriteria(entities.RawCriteria{City: "Mumbai"})
	_, _ = adapter.Search(ctx, criteria)

	assert.True(t, cache.has("properties:all"))
	assert.True(t, cache.has("properties:available"))
	assert.True(t, cache.has("properties:owner:user-1"))
	assert.True(t, cache.has(fmt.Sprintf("property:%d", p.ID)))
	assert.True(t, cache.has("properties:search:city=Mumbai"))
}

func TestCachedAdapter_CreateInvalidatesFamily(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	cache := newStubCache()
	seedListing(t, repo, "Mumbai")

	adapter := database.NewCachedPropertyAdapter(repo, cache, nil)

	_, _ = adapter.GetAll(ctx)
	assert.Equal(t, 1, repo.readCount())

	_, err := adapter.Create(ctx, &entities.Property{
		Owner:        "user-2",
		Title:        "New Listing",
		PropertyType: entities.TypeHouse,
		Status:       entities.StatusAvailable,
		Location:     entities.Location{City: "Pune", Area: "Baner"},
	})
	assert.NoError(t, err)
	assert.Contains(t, cache.patterns, "properties:*")
	assert.False(t, cache.has("properties:all"))

	all, err := adapter.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2, "read after create must refetch")
	assert.Equal(t, 2, repo.readCount())
}

func TestCachedAdapter_UpdateInvalidatesEntry(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	cache := newStubCache()
	p := seedListing(t, repo, "Mumbai")

	adapter := database.NewCachedPropertyAdapter(repo, cache, nil)

	_, _ = adapter.GetByID(ctx, p.ID)
	key := fmt.Sprintf("property:%d", p.ID)
	assert.True(t, cache.has(key))

	updated := *p
	updated.Title = "Renamed"
	assert.NoError(t, adapter.Update(ctx, &updated))

	assert.False(t, cache.has(key))
	assert.Contains(t, cache.deleted, key)

	got, err := adapter.GetByID(ctx, p.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}

func TestCachedAdapter_DeleteInvalidatesEntry(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	cache := newStubCache()
	p := seedListing(t, repo, "Mumbai")

	adapter := database.NewCachedPropertyAdapter(repo, cache, nil)

	_, _ = adapter.GetByID(ctx, p.ID)
	key := fmt.Sprintf("property:%d", p.ID)

	assert.NoError(t, adapter.Delete(ctx, p.ID))
	assert.False(t, cache.has(key))
	assert.Contains(t, cache.patterns, "properties:*")
}

func TestCachedAdapter_StaleFetchDoesNotRepopulateCache(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	cache := newStubCache()
	seedListing(t, repo, "Mumbai")

	adapter := database.NewCachedPropertyAdapter(repo, cache, nil)

	// Stall the remote read so a mutation can land while it is in flight
	repo.block = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = adapter.GetAll(ctx)
	}()

	// Give the goroutine time to enter the fetch
	for repo.readCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	_, err := adapter.Create(ctx, &entities.Property{
		Owner:        "user-2",
		Title:        "Racing Listing",
		PropertyType: entities.TypeHouse,
		Status:       entities.StatusAvailable,
		Location:     entities.Location{City: "Pune", Area: "Baner"},
	})
	assert.NoError(t, err)

	close(repo.block)
	<-done

	assert.False(t, cache.has("properties:all"),
		"a fetch that raced an invalidation must not write back")
}

func TestCachedAdapter_ConcurrentReadsShareOneFetch(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	cache := newStubCache()
	seedListing(t, repo, "Mumbai")

	adapter := database.NewCachedPropertyAdapter(repo, cache, nil)

	repo.block = make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = adapter.GetAll(ctx)
		}()
	}

	// Wait until the first caller is inside the fetch, then release
	for repo.readCount() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(repo.block)
	wg.Wait()

	assert.Equal(t, 1, repo.readCount(), "concurrent reads must share one fetch")
}

func TestCachedAdapter_CorruptEntryFallsBackToRepository(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	cache := newStubCache()
	seedListing(t, repo, "Mumbai")

	cache.Set(ctx, "properties:all", []byte("{not json"), 0)

	adapter := database.NewCachedPropertyAdapter(repo, cache, nil)

	listings, err := adapter.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Equal(t, 1, repo.readCount(), "corrupt entry must trigger a real fetch")
}
