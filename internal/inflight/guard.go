// Package inflight tracks operations that are currently in progress per key,
// so a second attempt on the same key can be rejected instead of duplicated.
package inflight

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/tact/internal/log"
)

// DefaultTTL is how long a claim survives if it is never released.
const DefaultTTL = 2 * time.Minute

// DefaultCleanupInterval is how often expired claims are purged.
const DefaultCleanupInterval = 5 * time.Minute

// Guard is a set of claimed keys backed by go-cache.
// Claims expire after the TTL, so a submission that never returns cannot
// lock its key forever.
type Guard struct {
	useCase string
	ttl     time.Duration
	cache   *gocache.Cache
}

// New creates a guard whose claims expire after ttl.
func New(useCase string, ttl, cleanupInterval time.Duration) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Guard{
		useCase: useCase,
		ttl:     ttl,
		cache:   gocache.New(ttl, cleanupInterval),
	}
}

// TryAcquire claims key. It returns false if key is already claimed.
func (g *Guard) TryAcquire(key string) bool {
	// Add is atomic: it fails when an unexpired item exists.
	if err := g.cache.Add(key, time.Now(), g.ttl); err != nil {
		log.Warn(log.CatStore, "In-flight claim rejected", "use_case", g.useCase, "key", key)
		return false
	}
	return true
}

// Release drops the claim on key.
func (g *Guard) Release(key string) {
	g.cache.Delete(key)
}

// InFlight reports whether key is currently claimed.
func (g *Guard) InFlight(key string) bool {
	_, found := g.cache.Get(key)
	return found
}

// Since returns when key was claimed.
func (g *Guard) Since(key string) (time.Time, bool) {
	v, found := g.cache.Get(key)
	if !found {
		return time.Time{}, false
	}
	started, ok := v.(time.Time)
	if !ok {
		log.Error(log.CatStore, "wrong type assertion when reading claim", "key", key)
		return time.Time{}, false
	}
	return started, true
}

// Count returns the number of live claims.
func (g *Guard) Count() int {
	return g.cache.ItemCount()
}
