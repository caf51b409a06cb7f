package api

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"vital/internal/alarm"
	"vital/internal/models"
)

// pushSender abstracts the push transport so the worker can be tested
// without a push service.
type pushSender interface {
	SendToUser(db *sql.DB, userID int, payload PushPayload) error
}

// DueNotifier is the browser-push delivery surface. It shares the
// resolver and minute-bucket deduplicator with the client alarm engine,
// so both surfaces agree on what "already alerted" means.
type DueNotifier struct {
	db    *sql.DB
	push  pushSender
	dedup *alarm.Deduplicator
}

func NewDueNotifier(db *sql.DB, push *WebPush) *DueNotifier {
	return &DueNotifier{db: db, push: push, dedup: alarm.NewDeduplicator()}
}

// Run processes due reminders on the given interval until ctx is
// cancelled. A failed cycle is logged and retried next tick.
func (n *DueNotifier) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := n.Process(time.Now()); err != nil {
				log.Printf("Due notifier error: %v", err)
			}
		}
	}
}

// Process resolves due reminders for every user with active reminders
// and pushes one notification per not-yet-notified occurrence.
func (n *DueNotifier) Process(now time.Time) error {
	rows, err := n.db.Query("SELECT DISTINCT user_id FROM reminders WHERE is_active = 1")
	if err != nil {
		return err
	}
	defer rows.Close()

	var userIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return err
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, userID := range userIDs {
		due, err := DueRemindersForUser(n.db, userID, now)
		if err != nil {
			log.Printf("Due notifier: resolving user %d failed: %v", userID, err)
			continue
		}
		for _, r := range due {
			if !n.dedup.ShouldNotify(r.ID, now) {
				continue
			}
			n.dedup.MarkNotified(r.ID, now)
			if err := n.sendDuePush(userID, r); err != nil {
				log.Printf("Due notifier: push for reminder %d failed: %v", r.ID, err)
			}
		}
	}
	return nil
}

func (n *DueNotifier) sendDuePush(userID int, r models.DueReminder) error {
	info := models.Categories[r.Category]
	body := r.Description
	if body == "" {
		body = "Due at " + r.Time
	}
	return n.push.SendToUser(n.db, userID, PushPayload{
		Title: fmt.Sprintf("%s Reminder: %s", info.Icon, r.Title),
		Body:  body,
		Tag:   fmt.Sprintf("vital-reminder-%d", r.ID),
		Data:  map[string]interface{}{"reminder_id": r.ID},
	})
}
