package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ResultCache memoizes request results under a fixed TTL. Keys derive
// from the full, order-independent parameter set of a request. Expired
// entries are treated as absent on read and swept lazily, at most once
// per sweep interval, on access; there is no background timer.
//
// Each logical cache (keyword search, semantic search, analysis) is an
// independent instance with its own key space.
type ResultCache[V any] struct {
	mu            sync.Mutex
	entries       map[string]entry[V]
	ttl           time.Duration
	sweepInterval time.Duration
	lastSweep     time.Time
}

type entry[V any] struct {
	value     V
	timestamp time.Time
}

// Stats reports cache occupancy for observability.
type Stats struct {
	TotalEntries   int
	ValidEntries   int
	ExpiredEntries int
	TTL            time.Duration
}

// New creates a result cache. Non-positive ttl defaults to 5 minutes,
// non-positive sweepInterval to 1 minute.
func New[V any](ttl, sweepInterval time.Duration) *ResultCache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &ResultCache[V]{
		entries:       make(map[string]entry[V]),
		ttl:           ttl,
		sweepInterval: sweepInterval,
		lastSweep:     time.Now(),
	}
}

// Key builds a deterministic cache key from a parameter set. Parameters
// are encoded sorted by name so that key derivation is order-independent.
func Key(params map[string]string) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s=%s;", name, params[name])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

// Get returns the cached value for the parameter set, if present and
// not expired.
func (c *ResultCache[V]) Get(params map[string]string) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(time.Now())

	e, ok := c.entries[Key(params)]
	if !ok {
		return zero, false
	}
	if time.Since(e.timestamp) > c.ttl {
		delete(c.entries, Key(params))
		return zero, false
	}
	return e.value, true
}

// Set stores a value for the parameter set. Re-storing an existing key
// simply refreshes its timestamp; concurrent duplicate writes are
// harmless.
func (c *ResultCache[V]) Set(params map[string]string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[Key(params)] = entry[V]{value: value, timestamp: time.Now()}
}

// Clear drops all entries.
func (c *ResultCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// GetStats returns cache statistics.
func (c *ResultCache[V]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	valid := 0
	for _, e := range c.entries {
		if now.Sub(e.timestamp) <= c.ttl {
			valid++
		}
	}
	return Stats{
		TotalEntries:   len(c.entries),
		ValidEntries:   valid,
		ExpiredEntries: len(c.entries) - valid,
		TTL:            c.ttl,
	}
}

// sweepLocked removes expired entries in one batch. Runs at most once
// per sweep interval so steady-state lookups stay cheap.
func (c *ResultCache[V]) sweepLocked(now time.Time) {
	if now.Sub(c.lastSweep) < c.sweepInterval {
		return
	}
	c.lastSweep = now
	for key, e := range c.entries {
		if now.Sub(e.timestamp) > c.ttl {
			delete(c.entries, key)
		}
	}
}
