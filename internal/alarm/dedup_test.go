package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicatorOncePerMinute(t *testing.T) {
	d := NewDeduplicator()
	now := time.Date(2026, 3, 10, 7, 0, 10, 0, time.Local)

	assert.True(t, d.ShouldNotify(1, now))
	assert.True(t, d.ShouldNotify(1, now)) // ShouldNotify alone records nothing

	d.MarkNotified(1, now)
	assert.False(t, d.ShouldNotify(1, now))

	// later in the same minute still suppressed
	assert.False(t, d.ShouldNotify(1, now.Add(40*time.Second)))

	// next minute is a new occurrence
	assert.True(t, d.ShouldNotify(1, now.Add(time.Minute)))

	// other reminders are independent
	assert.True(t, d.ShouldNotify(2, now))
}

func TestDeduplicatorNextDaySameMinute(t *testing.T) {
	d := NewDeduplicator()
	now := time.Date(2026, 3, 10, 7, 0, 0, 0, time.Local)
	d.MarkNotified(1, now)

	tomorrow := now.AddDate(0, 0, 1)
	assert.True(t, d.ShouldNotify(1, tomorrow))
}

func TestDeduplicatorEvictsPreviousDays(t *testing.T) {
	d := NewDeduplicator()
	yesterday := time.Date(2026, 3, 9, 7, 0, 0, 0, time.Local)
	d.MarkNotified(1, yesterday)
	d.MarkNotified(2, yesterday)

	today := yesterday.AddDate(0, 0, 1)
	d.MarkNotified(3, today)

	assert.Len(t, d.seen, 1)
}
