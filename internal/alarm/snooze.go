package alarm

import (
	"sync"
	"time"
)

// SnoozeRegistry tracks temporary per-reminder suppression windows.
// Entries expire lazily: once now reaches suppressUntil the entry is
// dropped on the next lookup, no background sweep runs.
type SnoozeRegistry struct {
	mu      sync.Mutex
	entries map[int]time.Time
}

func NewSnoozeRegistry() *SnoozeRegistry {
	return &SnoozeRegistry{entries: make(map[int]time.Time)}
}

// Snooze suppresses the reminder until now+d and returns the expiry.
func (s *SnoozeRegistry) Snooze(reminderID int, now time.Time, d time.Duration) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	until := now.Add(d)
	s.entries[reminderID] = until
	return until
}

func (s *SnoozeRegistry) IsSnoozed(reminderID int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.entries[reminderID]
	if !ok {
		return false
	}
	if !now.Before(until) {
		delete(s.entries, reminderID)
		return false
	}
	return true
}

// Cancel drops an entry before it expires.
func (s *SnoozeRegistry) Cancel(reminderID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, reminderID)
}
