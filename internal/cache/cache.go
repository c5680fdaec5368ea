// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/law-makers/reviews/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache defines the interface for parsed review caching implementations.
//
// Implementations should provide efficient retrieval and eviction strategies.
type Cache interface {
	// Get retrieves a cached review collection by URL.
	// Returns the collection and a boolean indicating if the URL was found.
	Get(url string) (*models.ProviderReviewList, bool)

	// Set stores a review collection with the specified TTL.
	// If the URL already exists, it is updated.
	Set(url string, reviews *models.ProviderReviewList, ttl time.Duration) error

	// Delete removes a cached collection by URL.
	// Should not error if the URL doesn't exist.
	Delete(url string) error

	// Clear removes all cached collections.
	Clear() error

	// Close performs cleanup and closes the cache.
	// Implementations must ensure background goroutines are stopped.
	Close()
}

// cacheEntry represents a cached review collection with metadata
type cacheEntry struct {
	Reviews   *models.ProviderReviewList
	ExpiresAt time.Time
	URL       string // For LRU tracking
}

// MemoryCache implements in-memory review caching with LRU eviction.
// Scraping the same URL twice inside the TTL hits the cache instead of the
// provider.
type MemoryCache struct {
	store      map[string]*list.Element
	lruList    *list.List // Doubly-linked list for LRU ordering
	mu         sync.RWMutex
	maxEntries int
	ctx        context.Context
	cancel     context.CancelFunc
	hits       uint64
	misses     uint64
}

// NewMemoryCache creates a new in-memory cache with LRU eviction
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}

	ctx, cancel := context.WithCancel(context.Background())

	cache := &MemoryCache{
		store:      make(map[string]*list.Element),
		lruList:    list.New(),
		maxEntries: maxEntries,
		ctx:        ctx,
		cancel:     cancel,
	}

	// Start background cleanup routine with context
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached review collection, moving it to the front of the
// LRU list on a hit.
func (mc *MemoryCache) Get(url string) (*models.ProviderReviewList, bool) {
	mc.mu.Lock() // Need write lock for LRU update
	element, exists := mc.store[url]
	if !exists {
		mc.misses++
		mc.mu.Unlock()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)

	if time.Now().After(entry.ExpiresAt) {
		mc.misses++
		mc.mu.Unlock()
		// Expired, delete it
		go mc.Delete(url)
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++
	mc.mu.Unlock()

	log.Debug().Str("url", url).Msg("Review cache hit")
	return entry.Reviews, true
}

// Set stores a review collection with TTL
func (mc *MemoryCache) Set(url string, reviews *models.ProviderReviewList, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[url]; exists {
		element.Value = &cacheEntry{
			Reviews:   reviews,
			ExpiresAt: time.Now().Add(ttl),
			URL:       url,
		}
		mc.lruList.MoveToFront(element)
		return nil
	}

	for mc.lruList.Len() >= mc.maxEntries {
		mc.evictLRU()
	}

	entry := &cacheEntry{
		Reviews:   reviews,
		ExpiresAt: time.Now().Add(ttl),
		URL:       url,
	}
	element := mc.lruList.PushFront(entry)
	mc.store[url] = element

	log.Debug().
		Str("url", url).
		Dur("ttl", ttl).
		Int("reviews", len(reviews.Reviews)).
		Msg("Cached review collection")

	return nil
}

// Delete removes a cached collection
func (mc *MemoryCache) Delete(url string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[url]; exists {
		mc.lruList.Remove(element)
		delete(mc.store, url)
		log.Debug().Str("url", url).Msg("Deleted from review cache")
	}

	return nil
}

// Clear removes all cached collections
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.hits = 0
	mc.misses = 0

	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// evictLRU removes the least recently used entry (must be called with lock held)
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}

	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.URL)

	log.Debug().Str("url", entry.URL).Msg("Evicted from review cache (LRU)")
}

// cleanupExpired periodically removes expired entries
func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()
			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				entry := element.Value.(*cacheEntry)
				if now.After(entry.ExpiresAt) {
					mc.lruList.Remove(element)
					delete(mc.store, entry.URL)
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			return
		}
	}
}

// Stats returns cache statistics including hit rate
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	hitRate := 0.0
	total := mc.hits + mc.misses
	if total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":  mc.lruList.Len(),
		"max":      mc.maxEntries,
		"hits":     mc.hits,
		"misses":   mc.misses,
		"hit_rate": hitRate,
	}
}
