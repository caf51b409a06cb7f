package api

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"vital/internal/alarm"
	"vital/internal/database"
)

type recordingSender struct {
	sent    []PushPayload
	userIDs []int
	failFor map[int]bool
}

func (r *recordingSender) SendToUser(db *sql.DB, userID int, payload PushPayload) error {
	if r.failFor[userID] {
		return errors.New("push service unavailable")
	}
	r.sent = append(r.sent, payload)
	r.userIDs = append(r.userIDs, userID)
	return nil
}

func setupNotifierDB(t *testing.T) *sql.DB {
	db, err := database.Initialize(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, username string) int {
	result, err := db.Exec(
		"INSERT INTO users (username, password_hash) VALUES (?, ?)",
		username, "x",
	)
	if err != nil {
		t.Fatal(err)
	}
	id, _ := result.LastInsertId()
	return int(id)
}

func seedReminder(t *testing.T, db *sql.DB, userID int, title, clock, repeat string) int {
	result, err := db.Exec(
		`INSERT INTO reminders (user_id, title, reminder_time, category, repeat_type)
		VALUES (?, ?, ?, 'medication', ?)`,
		userID, title, clock, repeat,
	)
	if err != nil {
		t.Fatal(err)
	}
	id, _ := result.LastInsertId()
	return int(id)
}

func TestNotifierSendsOncePerMinute(t *testing.T) {
	db := setupNotifierDB(t)
	userID := seedUser(t, db, "pushuser")
	seedReminder(t, db, userID, "Vitamin D", "07:00", "daily")
	seedReminder(t, db, userID, "Not yet", "09:00", "daily")

	sender := &recordingSender{}
	n := &DueNotifier{db: db, push: sender, dedup: alarm.NewDeduplicator()}

	now := time.Date(2026, 3, 10, 7, 0, 10, 0, time.Local)
	if err := n.Process(now); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("Expected 1 push, got %d", len(sender.sent))
	}
	if sender.userIDs[0] != userID {
		t.Fatalf("Expected push for user %d, got %d", userID, sender.userIDs[0])
	}

	// further cycles within the same minute stay silent
	if err := n.Process(now.Add(30 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("Expected no duplicate push within the minute, got %d", len(sender.sent))
	}

	// the next day's matching minute alerts again
	if err := n.Process(now.AddDate(0, 0, 1)); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("Expected a fresh push the next day, got %d", len(sender.sent))
	}
}

func TestNotifierContinuesPastFailingUser(t *testing.T) {
	db := setupNotifierDB(t)
	badUser := seedUser(t, db, "flaky")
	goodUser := seedUser(t, db, "steady")
	seedReminder(t, db, badUser, "Morning walk", "07:00", "daily")
	seedReminder(t, db, goodUser, "Morning pills", "07:00", "daily")

	sender := &recordingSender{failFor: map[int]bool{badUser: true}}
	n := &DueNotifier{db: db, push: sender, dedup: alarm.NewDeduplicator()}

	now := time.Date(2026, 3, 10, 7, 0, 10, 0, time.Local)
	if err := n.Process(now); err != nil {
		t.Fatal(err)
	}
	if len(sender.userIDs) != 1 || sender.userIDs[0] != goodUser {
		t.Fatalf("Expected the healthy user to still be pushed, got %v", sender.userIDs)
	}
}

func TestNotifierSkipsInactiveReminders(t *testing.T) {
	db := setupNotifierDB(t)
	userID := seedUser(t, db, "quiet")
	id := seedReminder(t, db, userID, "Paused", "07:00", "daily")
	if _, err := db.Exec("UPDATE reminders SET is_active = 0 WHERE id = ?", id); err != nil {
		t.Fatal(err)
	}

	sender := &recordingSender{}
	n := &DueNotifier{db: db, push: sender, dedup: alarm.NewDeduplicator()}

	now := time.Date(2026, 3, 10, 7, 0, 10, 0, time.Local)
	if err := n.Process(now); err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("Expected no push for inactive reminder, got %d", len(sender.sent))
	}
}
