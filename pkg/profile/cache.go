package profile

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Cache memoizes identity→profile results for a bounded duration so that
// repeated aggregations do not re-resolve the same identities. Entries
// expire independently; a stale entry reads as a miss.
type Cache interface {
	// Get returns the cached profile for the key and whether it was present
	// and fresh.
	Get(ctx context.Context, identityKey string) (Profile, bool, error)

	// Set stores the profile for the key.
	Set(ctx context.Context, identityKey string, p Profile) error
}

type memoryEntry struct {
	profile  Profile
	storedAt time.Time
}

// MemoryCache implements Cache with an in-process map. Expired entries are
// collected opportunistically: when an insert pushes the map past the sweep
// threshold, stale entries are dropped in place. There is no background
// timer.
type MemoryCache struct {
	mu             sync.RWMutex
	entries        map[string]memoryEntry
	ttl            time.Duration
	sweepThreshold int
	now            func() time.Time
}

// NewMemoryCache creates a new MemoryCache instance. The clock is injected
// so tests can control expiry.
func NewMemoryCache(ttl time.Duration, sweepThreshold int, now func() time.Time) *MemoryCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryCache{
		entries:        make(map[string]memoryEntry),
		ttl:            ttl,
		sweepThreshold: sweepThreshold,
		now:            now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, identityKey string) (Profile, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[identityKey]
	c.mu.RUnlock()

	if !ok || c.now().Sub(entry.storedAt) >= c.ttl {
		return Profile{}, false, nil
	}
	return entry.profile, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, identityKey string, p Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[identityKey] = memoryEntry{profile: p, storedAt: c.now()}

	if len(c.entries) > c.sweepThreshold {
		now := c.now()
		for key, entry := range c.entries {
			if now.Sub(entry.storedAt) >= c.ttl {
				delete(c.entries, key)
			}
		}
	}
	return nil
}

// Size returns the number of entries currently held, expired or not.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisCache implements Cache on Redis, sharing the memoized profiles
// across processes. Expiry is delegated to the server-side TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a new RedisCache instance
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
		prefix: "profile:",
	}
}

func (c *RedisCache) Get(ctx context.Context, identityKey string) (Profile, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+identityKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Profile{}, false, nil
		}
		return Profile{}, false, err
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, false, err
	}
	return p, true, nil
}

func (c *RedisCache) Set(ctx context.Context, identityKey string, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+identityKey, data, c.ttl).Err()
}
