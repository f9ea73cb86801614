package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-process CacheProvider for tests
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return nil, assert.AnError
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}

func countingHandler(calls *int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
}

func TestCacheMiddleware_HitAndMiss(t *testing.T) {
	cache := newMemoryCache()
	calls := 0
	handler := NewCacheMiddleware(cache).Middleware(countingHandler(&calls, `{"success":true}`))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/coverage/products?lat=-25.7&lng=28.1", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/coverage/products?lat=-25.7&lng=28.1", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestCacheMiddleware_QueryIsPartOfTheKey(t *testing.T) {
	cache := newMemoryCache()
	calls := 0
	handler := NewCacheMiddleware(cache).Middleware(countingHandler(&calls, `{}`))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/coverage/products?lat=-25.7&lng=28.1", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/coverage/products?lat=-26.2&lng=28.0", nil))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, cache.sets)
}

func TestCacheMiddleware_SkipsPostRequests(t *testing.T) {
	cache := newMemoryCache()
	calls := 0
	handler := NewCacheMiddleware(cache).Middleware(countingHandler(&calls, `{}`))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/coverage/products", nil))

	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 0, cache.sets)
}

func TestCacheMiddleware_SkipsUnconfiguredRoutes(t *testing.T) {
	cache := newMemoryCache()
	calls := 0
	handler := NewCacheMiddleware(cache).Middleware(countingHandler(&calls, `{}`))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/deals/deal-1", nil))

	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 0, cache.sets)
}

func TestCacheMiddleware_DoesNotCacheErrors(t *testing.T) {
	cache := newMemoryCache()
	handler := NewCacheMiddleware(cache).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadRequest)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/coverage/products?lat=x", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, cache.sets)
}
