package api

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"vital/internal/models"
	"vital/internal/reminder"

	"github.com/gofiber/fiber/v2"
)

func CreateReminderHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var req models.CreateReminderRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if req.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Title is required")
		}
		if _, _, err := reminder.ParseClock(req.Time); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid reminder time, expected HH:MM")
		}
		if req.Category == "" {
			req.Category = models.CategoryOther
		}
		if !models.ValidCategory(req.Category) {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown category")
		}
		if req.Repeat == "" {
			req.Repeat = models.RepeatOnce
		}
		if !models.ValidRepeat(req.Repeat) {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown repeat type")
		}

		var date interface{}
		if req.Date != "" {
			d, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid reminder date, expected YYYY-MM-DD")
			}
			date = d.Format("2006-01-02")
		}

		result, err := db.Exec(
			`INSERT INTO reminders (user_id, title, description, reminder_time, reminder_date, category, repeat_type)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			userID, req.Title, req.Description, req.Time, date, req.Category, req.Repeat,
		)
		if err != nil {
			return err
		}
		id, _ := result.LastInsertId()

		r, err := getReminder(db, userID, int(id))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

func ListRemindersHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		query := `SELECT id, user_id, title, description, reminder_time, reminder_date, category,
			repeat_type, is_active, is_completed, last_completed_at, created_at
			FROM reminders WHERE user_id = ?`
		if c.Query("active_only") == "true" {
			query += " AND is_active = 1"
		}
		query += " ORDER BY reminder_time ASC"

		rows, err := db.Query(query, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		reminders := []models.Reminder{}
		for rows.Next() {
			r, err := scanReminder(rows)
			if err != nil {
				return err
			}
			reminders = append(reminders, r)
		}
		return c.JSON(reminders)
	}
}

func UpdateReminderHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid reminder ID")
		}

		var req models.UpdateReminderRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if _, _, err := reminder.ParseClock(req.Time); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid reminder time, expected HH:MM")
		}
		if !models.ValidCategory(req.Category) {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown category")
		}
		if !models.ValidRepeat(req.Repeat) {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown repeat type")
		}

		result, err := db.Exec(
			`UPDATE reminders SET title = ?, description = ?, reminder_time = ?, category = ?, repeat_type = ?
			WHERE id = ? AND user_id = ?`,
			req.Title, req.Description, req.Time, req.Category, req.Repeat, id, userID,
		)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Reminder not found")
		}

		r, err := getReminder(db, userID, id)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

func DeleteReminderHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid reminder ID")
		}

		result, err := db.Exec("DELETE FROM reminders WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Reminder not found")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Reminder deleted"})
	}
}

func ToggleReminderHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid reminder ID")
		}

		result, err := db.Exec(
			"UPDATE reminders SET is_active = NOT is_active WHERE id = ? AND user_id = ?",
			id, userID,
		)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Reminder not found")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Reminder toggled"})
	}
}

// CompleteReminderHandler acknowledges an occurrence. Once-reminders are
// terminally completed; repeating reminders only record the
// acknowledgment and resurface next period.
func CompleteReminderHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid reminder")
		}

		result, err := db.Exec(
			`UPDATE reminders SET
				is_completed = CASE WHEN repeat_type = 'once' THEN 1 ELSE is_completed END,
				last_completed_at = CURRENT_TIMESTAMP
			WHERE id = ? AND user_id = ?`,
			id, userID,
		)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Reminder not found")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Marked complete"})
	}
}

// DueRemindersHandler is the server-side resolver invocation polled by
// delivery engines.
func DueRemindersHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		now := time.Now()

		due, err := DueRemindersForUser(db, userID, now)
		if err != nil {
			var unsupported *reminder.ErrUnsupportedRepeat
			if errors.As(err, &unsupported) {
				return fiber.NewError(fiber.StatusInternalServerError, unsupported.Error())
			}
			return err
		}

		return c.JSON(models.DueRemindersResponse{
			Success:     true,
			Reminders:   due,
			CurrentTime: now.Format("15:04:05"),
		})
	}
}

// DueRemindersForUser loads the user's active definitions and resolves
// them against now. Shared by the HTTP due-query and the push notifier.
func DueRemindersForUser(db *sql.DB, userID int, now time.Time) ([]models.DueReminder, error) {
	rows, err := db.Query(
		`SELECT id, user_id, title, description, reminder_time, reminder_date, category,
		repeat_type, is_active, is_completed, last_completed_at, created_at
		FROM reminders WHERE user_id = ? AND is_active = 1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	occurrences, err := reminder.Resolve(now, defs)
	if err != nil {
		return nil, err
	}

	due := []models.DueReminder{}
	for _, occ := range occurrences {
		due = append(due, models.DueReminder{
			ID:          occ.Reminder.ID,
			Title:       occ.Reminder.Title,
			Description: occ.Reminder.Description,
			Time:        occ.Reminder.Time,
			Category:    occ.Reminder.Category,
		})
	}
	return due, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReminder(row rowScanner) (models.Reminder, error) {
	var r models.Reminder
	var description sql.NullString
	var date, lastCompleted sql.NullTime
	err := row.Scan(
		&r.ID, &r.UserID, &r.Title, &description, &r.Time, &date, &r.Category,
		&r.Repeat, &r.Active, &r.Completed, &lastCompleted, &r.CreatedAt,
	)
	if err != nil {
		return r, err
	}
	r.Description = description.String
	if date.Valid {
		d := date.Time
		r.Date = &d
	}
	if lastCompleted.Valid {
		t := lastCompleted.Time
		r.LastCompletedAt = &t
	}
	return r, nil
}

func getReminder(db *sql.DB, userID, id int) (models.Reminder, error) {
	row := db.QueryRow(
		`SELECT id, user_id, title, description, reminder_time, reminder_date, category,
		repeat_type, is_active, is_completed, last_completed_at, created_at
		FROM reminders WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	return scanReminder(row)
}
