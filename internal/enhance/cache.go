package enhance

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/felixgeelhaar/planforge/pkg/planforge/types"
)

// Cache defaults. The TTL bounds staleness; the size cap bounds memory where
// the original design left the cache unbounded.
const (
	DefaultCacheTTL  = 24 * time.Hour
	DefaultCacheSize = 4096
)

// Store is the enhancement cache. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(key string) (*types.EnhancedPhase, bool)
	Add(key string, value *types.EnhancedPhase)
	Len() int
	Purge()
}

// LRUStore is the default Store: a TTL-expiring LRU.
type LRUStore struct {
	lru *expirable.LRU[string, *types.EnhancedPhase]
}

// NewLRUStore creates a Store with the given capacity and entry TTL.
// Non-positive arguments fall back to the defaults.
func NewLRUStore(size int, ttl time.Duration) *LRUStore {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &LRUStore{
		lru: expirable.NewLRU[string, *types.EnhancedPhase](size, nil, ttl),
	}
}

// Get implements Store. Expired entries are misses.
func (s *LRUStore) Get(key string) (*types.EnhancedPhase, bool) {
	return s.lru.Get(key)
}

// Add implements Store.
func (s *LRUStore) Add(key string, value *types.EnhancedPhase) {
	s.lru.Add(key, value)
}

// Len implements Store.
func (s *LRUStore) Len() int { return s.lru.Len() }

// Purge implements Store.
func (s *LRUStore) Purge() { s.lru.Purge() }
