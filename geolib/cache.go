package geolib

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const (
	DefaultCacheTTL  = time.Hour
	DefaultCacheSize = 1000
)

type cacheEntry struct {
	location   Location
	negative   bool
	insertedAt time.Time
}

// Cache is a TTL- and capacity-bounded store of lookup outcomes. It
// keeps both positive results and negative ones (a lookup that failed
// recently), so repeated failures do not hammer providers. A live
// negative entry is distinguishable from "never looked up".
//
// Safe for concurrent use.
type Cache struct {
	entries *lru.Cache
	ttl     time.Duration
	now     func() time.Time
}

func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}

	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	entries, err := lru.New(size)
	if err != nil {
		panic(err)
	}

	return &Cache{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the live entry for key. found reports whether a live
// entry exists at all; ok reports whether that entry is positive.
// Expired entries are evicted on read.
func (c *Cache) Get(key string) (loc Location, ok bool, found bool) {
	value, present := c.entries.Get(key)
	if !present {
		return Location{}, false, false
	}

	entry := value.(cacheEntry)

	if c.now().Sub(entry.insertedAt) > c.ttl {
		c.entries.Remove(key)

		return Location{}, false, false
	}

	return entry.location, !entry.negative, true
}

func (c *Cache) Put(key string, loc Location) {
	c.entries.Add(key, cacheEntry{location: loc, insertedAt: c.now()})
}

func (c *Cache) PutNegative(key string) {
	c.entries.Add(key, cacheEntry{negative: true, insertedAt: c.now()})
}

func (c *Cache) Len() int {
	return c.entries.Len()
}
