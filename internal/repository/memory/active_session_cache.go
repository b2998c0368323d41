package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ActiveSessionCache memoizes the resolver's answer for "which chat is this
// user's active session". It is an optimization only: entries are evicted on
// every lifecycle transition and the database stays the source of truth, so a
// stale or missing entry just costs one extra query.
type ActiveSessionCache struct {
	cache *cache.Cache
}

func NewActiveSessionCache() *ActiveSessionCache {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ActiveSessionCache{
		cache: c,
	}
}

func (r *ActiveSessionCache) Put(userId uuid.UUID, chatId uuid.UUID) {
	r.cache.Set(userId.String(), chatId, cache.DefaultExpiration)
}

func (r *ActiveSessionCache) Get(userId uuid.UUID) (uuid.UUID, bool) {
	if x, found := r.cache.Get(userId.String()); found {
		return x.(uuid.UUID), true
	}
	return uuid.Nil, false
}

func (r *ActiveSessionCache) Invalidate(userId uuid.UUID) {
	r.cache.Delete(userId.String())
}
