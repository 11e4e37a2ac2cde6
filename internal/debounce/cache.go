// Package debounce memoizes recent scan decisions so that the burst of
// duplicate hardware reads produced by one physical badge tap is answered
// once, with one store write, instead of flipping the user's state on every
// retransmission.
package debounce

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"rfid-access-backend/internal/access"
)

// Key identifies one physical scan source: the credential at a specific
// device, gate and node.
type Key struct {
	RFIDTag    string
	DeviceCode string
	GateID     int64
	NodeID     int64
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%d|%d", k.RFIDTag, k.DeviceCode, k.GateID, k.NodeID)
}

type entry struct {
	decision access.Decision
	storedAt time.Time
}

// Cache is a TTL-bounded, size-bounded decision memo. Expiry is checked on
// read and the size bound is enforced on write (LRU), as two independent
// concerns. Safe for concurrent use.
type Cache struct {
	mu  sync.Mutex
	lru *simplelru.LRU[string, entry]
	ttl time.Duration
	now func() time.Time
}

// New creates a cache holding at most capacity entries, each valid for ttl.
func New(capacity int, ttl time.Duration) (*Cache, error) {
	lru, err := simplelru.NewLRU[string, entry](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("debounce cache init failed: %w", err)
	}
	return &Cache{lru: lru, ttl: ttl, now: time.Now}, nil
}

// Get returns the memoized decision for key if one was stored within the TTL
// window. Expired entries are dropped on read.
func (c *Cache) Get(key Key) (access.Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.String()
	e, ok := c.lru.Get(k)
	if !ok {
		return access.Decision{}, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		c.lru.Remove(k)
		return access.Decision{}, false
	}
	return e.decision, true
}

// Put stores a fresh decision for key, evicting the least recently used entry
// when the cache is full.
func (c *Cache) Put(key Key, dec access.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key.String(), entry{decision: dec, storedAt: c.now()})
}

// Len reports the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// SetClock overrides the time source. Test hook.
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}
