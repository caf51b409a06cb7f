package api

import (
	"database/sql"
	"time"

	"vital/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LogActivityHandler upserts the day's activity numbers. Each user has
// one row per calendar date.
func LogActivityHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var req models.LogActivityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		date := req.Date
		if date == "" {
			date = time.Now().Format("2006-01-02")
		} else if _, err := time.Parse("2006-01-02", date); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid activity date, expected YYYY-MM-DD")
		}
		if req.Steps < 0 || req.Steps > 200000 {
			return fiber.NewError(fiber.StatusBadRequest, "Steps out of range")
		}
		if req.SleepHours < 0 || req.SleepHours > 24 {
			return fiber.NewError(fiber.StatusBadRequest, "Sleep hours out of range")
		}

		_, err := db.Exec(
			`INSERT INTO daily_activities
				(user_id, activity_date, steps_count, water_intake_glasses, sleep_hours, exercise_minutes, calories_burned)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, activity_date) DO UPDATE SET
				steps_count = excluded.steps_count,
				water_intake_glasses = excluded.water_intake_glasses,
				sleep_hours = excluded.sleep_hours,
				exercise_minutes = excluded.exercise_minutes,
				calories_burned = excluded.calories_burned`,
			userID, date, req.Steps, req.WaterGlasses, req.SleepHours, req.ExerciseMinutes, req.CaloriesBurned,
		)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "Activity logged"})
	}
}

func TodayActivityHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		today := time.Now().Format("2006-01-02")

		a, err := activityByDate(db, userID, today)
		if err == sql.ErrNoRows {
			return c.JSON(models.DailyActivity{UserID: userID, Date: today})
		}
		if err != nil {
			return err
		}
		return c.JSON(a)
	}
}

// AddWaterHandler increments today's water glass count by one.
func AddWaterHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		today := time.Now().Format("2006-01-02")

		_, err := db.Exec(
			`INSERT INTO daily_activities (user_id, activity_date, water_intake_glasses)
			VALUES (?, ?, 1)
			ON CONFLICT(user_id, activity_date) DO UPDATE SET
				water_intake_glasses = water_intake_glasses + 1`,
			userID, today,
		)
		if err != nil {
			return err
		}

		a, err := activityByDate(db, userID, today)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "water_intake_glasses": a.WaterGlasses})
	}
}

type AddStepsRequest struct {
	Steps int `json:"steps"`
}

// AddStepsHandler adds steps to today's count.
func AddStepsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var req AddStepsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if req.Steps <= 0 || req.Steps > 100000 {
			return fiber.NewError(fiber.StatusBadRequest, "Steps must be between 1 and 100000")
		}

		today := time.Now().Format("2006-01-02")
		_, err := db.Exec(
			`INSERT INTO daily_activities (user_id, activity_date, steps_count)
			VALUES (?, ?, ?)
			ON CONFLICT(user_id, activity_date) DO UPDATE SET
				steps_count = steps_count + excluded.steps_count`,
			userID, today, req.Steps,
		)
		if err != nil {
			return err
		}

		a, err := activityByDate(db, userID, today)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "steps_count": a.Steps})
	}
}

// WeeklySummaryHandler aggregates the last seven days.
func WeeklySummaryHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		since := time.Now().AddDate(0, 0, -6).Format("2006-01-02")

		var days int
		var steps, water, exercise, calories int
		var sleep float64
		err := db.QueryRow(
			`SELECT COUNT(*), COALESCE(SUM(steps_count), 0), COALESCE(SUM(water_intake_glasses), 0),
				COALESCE(SUM(sleep_hours), 0), COALESCE(SUM(exercise_minutes), 0), COALESCE(SUM(calories_burned), 0)
			FROM daily_activities WHERE user_id = ? AND activity_date >= ?`,
			userID, since,
		).Scan(&days, &steps, &water, &sleep, &exercise, &calories)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"days_logged":          days,
			"steps_count":          steps,
			"water_intake_glasses": water,
			"sleep_hours":          sleep,
			"exercise_minutes":     exercise,
			"calories_burned":      calories,
		})
	}
}

func activityByDate(db *sql.DB, userID int, date string) (models.DailyActivity, error) {
	var a models.DailyActivity
	// The driver hands DATE columns back as time.Time.
	var day time.Time
	err := db.QueryRow(
		`SELECT id, user_id, activity_date, steps_count, water_intake_glasses, sleep_hours,
			exercise_minutes, calories_burned, created_at
		FROM daily_activities WHERE user_id = ? AND activity_date = ?`,
		userID, date,
	).Scan(&a.ID, &a.UserID, &day, &a.Steps, &a.WaterGlasses, &a.SleepHours,
		&a.ExerciseMinutes, &a.CaloriesBurned, &a.CreatedAt)
	a.Date = day.Format("2006-01-02")
	return a, err
}
