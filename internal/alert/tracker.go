package alert

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
)

const (
	// DefaultHistorySize caps the remembered alerts per instrument.
	DefaultHistorySize = 10
	// DefaultBuffer keeps entries around a little longer than the cooldown.
	DefaultBuffer = time.Hour

	minCooldown = time.Hour
	maxCooldown = 8 * time.Hour
)

// TrackerConfig holds configuration for alert deduplication
type TrackerConfig struct {
	Cooldown    time.Duration
	Buffer      time.Duration
	HistorySize int
}

// Entry is one alert that was allowed through.
type Entry struct {
	Timestamp time.Time
	Direction domain.Direction
}

// TrackerStats holds deduplication statistics
type TrackerStats struct {
	Allowed     int
	Suppressed  int
	Instruments int
}

// Tracker suppresses repeated alerts for the same instrument and direction
// within a cooldown. It is safe for concurrent use; the check and the record
// of an allowed alert happen under one lock.
type Tracker struct {
	mu      sync.Mutex
	config  TrackerConfig
	history map[string][]Entry
	stats   TrackerStats
}

// NewTracker creates a new alert tracker instance
func NewTracker(config TrackerConfig) (*Tracker, error) {
	if config.Cooldown < minCooldown || config.Cooldown > maxCooldown {
		return nil, fmt.Errorf("%w: alert cooldown %s outside [%s, %s]", ports.ErrConfigurationError, config.Cooldown, minCooldown, maxCooldown)
	}
	if config.Buffer < 0 {
		return nil, fmt.Errorf("%w: alert buffer must not be negative", ports.ErrConfigurationError)
	}
	if config.Buffer == 0 {
		config.Buffer = DefaultBuffer
	}
	if config.HistorySize <= 0 {
		config.HistorySize = DefaultHistorySize
	}
	return &Tracker{
		config:  config,
		history: make(map[string][]Entry),
	}, nil
}

// Allow reports whether an alert for symbol in direction may be emitted at
// the given time and, if so, records it. An alert is suppressed when the same
// direction was allowed for the symbol less than the cooldown ago.
func (t *Tracker) Allow(symbol string, direction domain.Direction, at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.evict(symbol, at)
	for _, e := range entries {
		if e.Direction == direction && at.Sub(e.Timestamp) < t.config.Cooldown {
			t.stats.Suppressed++
			return false
		}
	}

	entries = append(entries, Entry{Timestamp: at, Direction: direction})
	if len(entries) > t.config.HistorySize {
		entries = entries[len(entries)-t.config.HistorySize:]
	}
	t.history[symbol] = entries
	t.stats.Allowed++
	return true
}

// evict drops entries older than cooldown plus buffer. Callers hold the lock.
func (t *Tracker) evict(symbol string, now time.Time) []Entry {
	entries := t.history[symbol]
	horizon := t.config.Cooldown + t.config.Buffer
	kept := entries[:0]
	for _, e := range entries {
		if now.Sub(e.Timestamp) <= horizon {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(t.history, symbol)
		return nil
	}
	t.history[symbol] = kept
	return kept
}

// Prune evicts expired entries of every instrument and returns how many
// instruments still have history.
func (t *Tracker) Prune(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	for symbol := range t.history {
		t.evict(symbol, now)
	}
	return len(t.history)
}

// History returns a copy of the remembered alerts for symbol, oldest first.
func (t *Tracker) History(symbol string) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.history[symbol]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Symbols lists the instruments with remembered alerts.
func (t *Tracker) Symbols() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(t.history))
	for s := range t.history {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Stats returns a snapshot of the counters.
func (t *Tracker) Stats() TrackerStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats
	s.Instruments = len(t.history)
	return s
}

// Cooldown returns the configured suppression window.
func (t *Tracker) Cooldown() time.Duration {
	return t.config.Cooldown
}

// Forget removes the alert recorded by Allow for symbol, direction and at.
// Callers use it when an allowed alert could not be delivered, so the
// cooldown only starts with a delivered alert. It reports whether an entry
// was removed.
func (t *Tracker) Forget(symbol string, direction domain.Direction, at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := t.history[symbol]
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Direction != direction || !e.Timestamp.Equal(at) {
			continue
		}
		entries = append(entries[:i], entries[i+1:]...)
		if len(entries) == 0 {
			delete(t.history, symbol)
		} else {
			t.history[symbol] = entries
		}
		t.stats.Allowed--
		return true
	}
	return false
}
