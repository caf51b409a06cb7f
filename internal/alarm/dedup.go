package alarm

import (
	"sync"
	"time"
)

type dedupKey struct {
	ReminderID int
	Bucket     time.Time
}

// Deduplicator guarantees at most one alert per reminder per wall-clock
// minute. Keys from previous days are discarded whenever a new key is
// recorded, so the set stays bounded to one day of activity.
type Deduplicator struct {
	mu   sync.Mutex
	seen map[dedupKey]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[dedupKey]struct{})}
}

// ShouldNotify reports whether the reminder has not yet been surfaced in
// the minute containing now.
func (d *Deduplicator) ShouldNotify(reminderID int, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[dedupKey{ReminderID: reminderID, Bucket: now.Truncate(time.Minute)}]
	return !ok
}

// MarkNotified records that the reminder was surfaced in the minute
// containing now and evicts keys older than the current day.
func (d *Deduplicator) MarkNotified(reminderID int, now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[dedupKey{ReminderID: reminderID, Bucket: now.Truncate(time.Minute)}] = struct{}{}

	y, m, day := now.Date()
	midnight := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	for k := range d.seen {
		if k.Bucket.Before(midnight) {
			delete(d.seen, k)
		}
	}
}
