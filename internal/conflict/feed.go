package conflict

import (
	"sync"
	"time"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

// Feed is a bounded, time-decaying view over the registry's open set.
// At most MaxVisible conflicts surface at once; the rest stay queryable
// through the registry. Auto-resolvable conflicts left untouched for
// Countdown are resolved with the remote version. Everything else stays
// open until acted on.
type Feed struct {
	registry   *Registry
	maxVisible int
	countdown  time.Duration
	expire     func(conflictID string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

type FeedConfig struct {
	MaxVisible int
	Countdown  time.Duration
}

// NewFeed builds a feed over the registry. expire is invoked when an
// auto-resolvable conflict's countdown elapses; the caller resolves it
// with the "theirs" choice.
func NewFeed(registry *Registry, cfg FeedConfig, expire func(conflictID string)) *Feed {
	return &Feed{
		registry:   registry,
		maxVisible: cfg.MaxVisible,
		countdown:  cfg.Countdown,
		expire:     expire,
		timers:     make(map[string]*time.Timer),
	}
}

// Visible returns the top open conflicts, capped at MaxVisible.
func (f *Feed) Visible() []*domain.Conflict {
	open := f.registry.ListOpen()
	if f.maxVisible > 0 && len(open) > f.maxVisible {
		open = open[:f.maxVisible]
	}
	return open
}

// Track starts the auto-expiry countdown for a newly stored conflict.
// Non-auto-resolvable conflicts never expire. Re-tracking an item's
// replacement conflict restarts its countdown.
func (f *Feed) Track(c *domain.Conflict) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if timer, ok := f.timers[c.ID]; ok {
		timer.Stop()
		delete(f.timers, c.ID)
	}

	if !c.AutoResolvable || f.countdown <= 0 || f.expire == nil {
		return
	}

	conflictID := c.ID
	f.timers[conflictID] = time.AfterFunc(f.countdown, func() {
		f.Forget(conflictID)
		f.expire(conflictID)
	})
}

// Forget stops any pending countdown for the conflict.
func (f *Feed) Forget(conflictID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if timer, ok := f.timers[conflictID]; ok {
		timer.Stop()
		delete(f.timers, conflictID)
	}
}

// Close stops all pending countdowns.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, timer := range f.timers {
		timer.Stop()
		delete(f.timers, id)
	}
}
