// Package reminder holds the pure due-reminder resolution logic shared by
// the HTTP due-query, the background push notifier and the client-side
// alarm engine.
package reminder

import (
	"fmt"
	"time"

	"vital/internal/models"
)

// Occurrence pairs a due definition with the minute it matched. It lives
// only within one resolution cycle and is never persisted.
type Occurrence struct {
	Reminder models.Reminder
	At       time.Time
}

// ErrUnsupportedRepeat reports a repeat policy the resolver has no rule
// for. It is returned instead of silently skipping the definition.
type ErrUnsupportedRepeat struct {
	Repeat     string
	ReminderID int
}

func (e *ErrUnsupportedRepeat) Error() string {
	return fmt.Sprintf("reminder %d has unsupported repeat policy %q", e.ReminderID, e.Repeat)
}

// Resolve returns the definitions due at now. A definition is due when it
// is active, not terminally completed, its wall-clock time matches now to
// minute precision, and its repeat policy is satisfied:
//
//   - daily: every day
//   - once: date equals today, or no date set (documented leniency)
//   - weekly: weekday of now equals weekday of the creation timestamp
//   - monthly: day-of-month of the creation timestamp, clamped to the
//     last day of shorter months (a reminder created on the 31st fires
//     on Feb 28/29, Apr 30, ...)
//
// Completion only terminates once-reminders; repeating reminders
// resurface every period regardless of the completed flag, because
// completing them acknowledges a single occurrence, not the series.
// No ordering is imposed on the result.
func Resolve(now time.Time, defs []models.Reminder) ([]Occurrence, error) {
	bucket := now.Truncate(time.Minute)

	var due []Occurrence
	for _, def := range defs {
		ok, err := isDue(now, def)
		if err != nil {
			return nil, err
		}
		if ok {
			due = append(due, Occurrence{Reminder: def, At: bucket})
		}
	}
	return due, nil
}

func isDue(now time.Time, def models.Reminder) (bool, error) {
	if !def.Active {
		return false, nil
	}
	// Completed is terminal for once-reminders only.
	if def.Completed && def.Repeat == models.RepeatOnce {
		return false, nil
	}

	hh, mm, err := ParseClock(def.Time)
	if err != nil {
		return false, fmt.Errorf("reminder %d: %w", def.ID, err)
	}
	if now.Hour() != hh || now.Minute() != mm {
		return false, nil
	}

	switch def.Repeat {
	case models.RepeatDaily:
		return true, nil
	case models.RepeatOnce:
		if def.Date == nil {
			return true, nil // any-day leniency for undated once-reminders
		}
		y1, m1, d1 := def.Date.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2, nil
	case models.RepeatWeekly:
		return now.Weekday() == def.CreatedAt.Weekday(), nil
	case models.RepeatMonthly:
		return now.Day() == clampDay(def.CreatedAt.Day(), now), nil
	default:
		return false, &ErrUnsupportedRepeat{Repeat: def.Repeat, ReminderID: def.ID}
	}
}

// clampDay pulls an anchor day-of-month into the month of now, so an
// anchor of 31 matches the final day of February, April and friends.
func clampDay(anchor int, now time.Time) int {
	last := lastDayOfMonth(now)
	if anchor > last {
		return last
	}
	return anchor
}

func lastDayOfMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// ParseClock parses a "HH:MM" or "HH:MM:SS" wall-clock string. Seconds
// are accepted and ignored since matching is minute-precision.
func ParseClock(s string) (hour, minute int, err error) {
	var sec int
	if _, e := fmt.Sscanf(s, "%d:%d:%d", &hour, &minute, &sec); e == nil {
		// fallthrough to range check
	} else if _, e := fmt.Sscanf(s, "%d:%d", &hour, &minute); e != nil {
		return 0, 0, fmt.Errorf("invalid reminder time %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid reminder time %q", s)
	}
	return hour, minute, nil
}
