package tracker

import (
	"context"
	"log"
	"sync"
	"time"
)

// ActivityWindow is how far back channel activity counts.
const ActivityWindow = 60 * time.Second

// RateWindow is the fixed window for rate counters.
const RateWindow = 60 * time.Second

// rateEntry counts requests within one window. Count resets to 1 and
// ResetTime advances whenever now passes ResetTime.
type rateEntry struct {
	Count     int
	ResetTime time.Time
}

// Tracker owns channel activity lists and user/channel rate counters.
// Safe for concurrent use. Nothing outside this package touches the maps.
type Tracker struct {
	mu       sync.Mutex
	activity map[string][]time.Time
	users    map[string]*rateEntry
	channels map[string]*rateEntry
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{
		activity: make(map[string][]time.Time),
		users:    make(map[string]*rateEntry),
		channels: make(map[string]*rateEntry),
	}
}

// RecordActivity appends a timestamp for channelID. Called on every inbound
// message regardless of admission.
func (t *Tracker) RecordActivity(channelID string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activity[channelID] = append(trimWindow(t.activity[channelID], now), now)
}

// ActivityCount returns how many messages the channel saw in the last minute.
func (t *Tracker) ActivityCount(channelID string, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	trimmed := trimWindow(t.activity[channelID], now)
	t.activity[channelID] = trimmed
	return len(trimmed)
}

func trimWindow(ts []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-ActivityWindow)
	var kept []time.Time
	for _, at := range ts {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	return kept
}

// AllowUser checks and consumes one slot of the per-user rate limit.
func (t *Tracker) AllowUser(userID string, max int, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return check(t.users, userID, max, RateWindow, now)
}

// AllowChannel checks and consumes one slot of the per-channel rate limit.
func (t *Tracker) AllowChannel(channelID string, max int, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return check(t.channels, channelID, max, RateWindow, now)
}

// check implements the fixed-window counter: create on first use or when the
// window expired, else increment until max.
func check(m map[string]*rateEntry, key string, max int, window time.Duration, now time.Time) bool {
	e, ok := m[key]
	if !ok || now.After(e.ResetTime) {
		m[key] = &rateEntry{Count: 1, ResetTime: now.Add(window)}
		return true
	}
	if e.Count < max {
		e.Count++
		return true
	}
	return false
}

// StartSweeps launches the background maintenance passes: expired rate
// entries every 5 minutes, dead activity lists every 10. Stops with ctx.
func (t *Tracker) StartSweeps(ctx context.Context) {
	go t.sweepLoop(ctx, 5*time.Minute, t.sweepRates)
	go t.sweepLoop(ctx, 10*time.Minute, t.sweepActivity)
}

func (t *Tracker) sweepLoop(ctx context.Context, every time.Duration, pass func(time.Time)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			pass(now)
		}
	}
}

func (t *Tracker) sweepRates(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	removed := 0
	for key, e := range t.users {
		if now.After(e.ResetTime) {
			delete(t.users, key)
			removed++
		}
	}
	for key, e := range t.channels {
		if now.After(e.ResetTime) {
			delete(t.channels, key)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[TRACK] rate sweep removed=%d", removed)
	}
}

func (t *Tracker) sweepActivity(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for channelID, ts := range t.activity {
		if len(trimWindow(ts, now)) == 0 {
			delete(t.activity, channelID)
		}
	}
}
