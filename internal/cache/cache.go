// Package cache owns the current market snapshot. Reads are lock-free via
// an atomic pointer swap; regeneration is collapsed through singleflight so
// concurrent readers of an empty or stale cache share one generation run.
package cache

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"cse-market-data/internal/model"
)

// DefaultTTL is the staleness bound applied when Config.TTL is zero.
const DefaultTTL = 5 * time.Minute

// State describes the cache lifecycle: EMPTY before the first successful
// generation, FRESH while within the staleness bound, STALE after.
type State int

const (
	StateEmpty State = iota
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Generator produces a complete snapshot for one cycle. It must not retain
// or mutate the returned value after returning it.
type Generator func(now time.Time, marketOpen bool) (*model.Snapshot, error)

type Config struct {
	Generator Generator
	// TTL is the staleness bound. Zero means DefaultTTL.
	TTL time.Duration
	// Now and MarketOpen are injectable for tests; nil means time.Now and
	// always-open respectively.
	Now        func() time.Time
	MarketOpen func(time.Time) bool
}

type Cache struct {
	gen    Generator
	ttl    time.Duration
	now    func() time.Time
	isOpen func(time.Time) bool

	cur   atomic.Pointer[model.Snapshot]
	group singleflight.Group

	mu      sync.Mutex
	lastErr error

	publish []func(*model.Snapshot)
}

func New(cfg Config) *Cache {
	c := &Cache{
		gen:    cfg.Generator,
		ttl:    cfg.TTL,
		now:    cfg.Now,
		isOpen: cfg.MarketOpen,
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.isOpen == nil {
		c.isOpen = func(time.Time) bool { return true }
	}
	return c
}

// OnPublish registers a hook invoked with every newly stored snapshot.
// Hooks run on the regenerating goroutine; register before first use.
func (c *Cache) OnPublish(fn func(*model.Snapshot)) {
	c.publish = append(c.publish, fn)
}

// Snapshot returns the current snapshot, regenerating first if the cache is
// empty or stale. The caller blocks only while a generation is in flight.
func (c *Cache) Snapshot() (*model.Snapshot, error) {
	if cur := c.cur.Load(); cur != nil && c.now().Sub(cur.GeneratedAt) <= c.ttl {
		return cur, nil
	}
	return c.Refresh()
}

// Current returns the stored snapshot without triggering regeneration.
// It is nil while the cache is empty.
func (c *Cache) Current() *model.Snapshot {
	return c.cur.Load()
}

// Quote returns the current quote for symbol, regenerating per the Snapshot
// policy. Unknown symbols yield model.ErrNotFound.
func (c *Cache) Quote(symbol string) (model.Quote, error) {
	snap, err := c.Snapshot()
	if err != nil {
		return model.Quote{}, err
	}
	q, ok := snap.Quote(symbol)
	if !ok {
		return model.Quote{}, fmt.Errorf("%s: %w", symbol, model.ErrNotFound)
	}
	return q, nil
}

// Refresh force-regenerates the snapshot regardless of staleness. Callers
// arriving while a regeneration is in flight share its result. On failure
// the previous snapshot is kept and keeps serving readers.
func (c *Cache) Refresh() (*model.Snapshot, error) {
	v, err, _ := c.group.Do("snapshot", func() (any, error) {
		snap, err := c.generate()
		if err != nil {
			c.mu.Lock()
			c.lastErr = err
			c.mu.Unlock()
			return nil, err
		}
		c.cur.Store(snap)
		c.mu.Lock()
		c.lastErr = nil
		c.mu.Unlock()
		for _, fn := range c.publish {
			fn(snap)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Snapshot), nil
}

// generate runs the pipeline once, converting a panic into an error so a
// failing cycle cannot take down the process or corrupt the stored snapshot.
func (c *Cache) generate() (snap *model.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = fmt.Errorf("snapshot generation panic: %v", r)
			log.Printf("[cache] recovered generation panic: %v", r)
		}
	}()
	now := c.now()
	return c.gen(now, c.isOpen(now))
}

// State reports the lifecycle position of the stored snapshot.
func (c *Cache) State() State {
	cur := c.cur.Load()
	if cur == nil {
		return StateEmpty
	}
	if c.now().Sub(cur.GeneratedAt) > c.ttl {
		return StateStale
	}
	return StateFresh
}

// Age is the time since the stored snapshot was generated, zero when empty.
func (c *Cache) Age() time.Duration {
	cur := c.cur.Load()
	if cur == nil {
		return 0
	}
	return c.now().Sub(cur.GeneratedAt)
}

// LastError returns the most recent regeneration failure, nil after any
// subsequent success.
func (c *Cache) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
