package cache

import (
	"context"
	"log"
	"time"
)

// Scheduler drives periodic regeneration. A timer goroutine feeds tick
// times into a channel consumed by a single owner loop, so refreshes never
// pile up behind a slow cycle. Ticks while the market is closed are logged
// no-ops unless development mode is on.
type Scheduler struct {
	cache    *Cache
	interval time.Duration
	devMode  bool
	isOpen   func(time.Time) bool

	// OnSkip, when set, is invoked for every closed-market tick.
	OnSkip func()
}

func NewScheduler(c *Cache, interval time.Duration, devMode bool, isOpen func(time.Time) bool) *Scheduler {
	if isOpen == nil {
		isOpen = func(time.Time) bool { return true }
	}
	return &Scheduler{
		cache:    c,
		interval: interval,
		devMode:  devMode,
		isOpen:   isOpen,
	}
}

// Run blocks until ctx is cancelled. Call it on its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticks := make(chan time.Time, 1)
	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		defer close(ticks)
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				select {
				case ticks <- now:
				default: // previous tick still pending, drop this one
				}
			}
		}
	}()

	log.Printf("[cache] scheduler running, interval=%v dev=%v", s.interval, s.devMode)
	for now := range ticks {
		if !s.devMode && !s.isOpen(now) {
			log.Printf("[cache] market closed, skipping scheduled refresh")
			if s.OnSkip != nil {
				s.OnSkip()
			}
			continue
		}
		if _, err := s.cache.Refresh(); err != nil {
			log.Printf("[cache] scheduled refresh failed: %v", err)
		}
	}
}
