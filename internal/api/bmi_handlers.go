package api

import (
	"database/sql"
	"math"
	"strconv"

	"vital/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CalculateBMIRequest struct {
	HeightCm float64 `json:"height_cm"`
	WeightKg float64 `json:"weight_kg"`
	Notes    string  `json:"notes,omitempty"`
}

func calculateBMI(weightKg, heightCm float64) (float64, string) {
	m := heightCm / 100
	value := math.Round(weightKg/(m*m)*10) / 10

	var category string
	switch {
	case value < 18.5:
		category = "Underweight"
	case value < 25:
		category = "Normal"
	case value < 30:
		category = "Overweight"
	default:
		category = "Obese"
	}
	return value, category
}

var bmiAdvice = map[string]string{
	"Underweight": "Consider a nutrient-rich diet with more calories and strength training.",
	"Normal":      "Keep up your current routine of balanced diet and regular activity.",
	"Overweight":  "Aim for a moderate calorie deficit and at least 150 minutes of weekly exercise.",
	"Obese":       "Consult a healthcare provider for a structured weight management plan.",
}

// CalculateBMIHandler computes and stores a BMI record and syncs the
// latest weight into the profile.
func CalculateBMIHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var req CalculateBMIRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if req.HeightCm < 50 || req.HeightCm > 300 {
			return fiber.NewError(fiber.StatusBadRequest, "Height must be between 50 and 300 cm")
		}
		if req.WeightKg < 10 || req.WeightKg > 500 {
			return fiber.NewError(fiber.StatusBadRequest, "Weight must be between 10 and 500 kg")
		}

		value, category := calculateBMI(req.WeightKg, req.HeightCm)

		result, err := db.Exec(
			`INSERT INTO bmi_records (user_id, height_cm, weight_kg, bmi_value, bmi_category, notes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			userID, req.HeightCm, req.WeightKg, value, category, req.Notes,
		)
		if err != nil {
			return err
		}
		id, _ := result.LastInsertId()

		// Keep the profile's current weight in sync with the newest record
		_, _ = db.Exec(
			"UPDATE user_profiles SET weight_kg = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?",
			req.WeightKg, userID,
		)

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":      true,
			"id":           id,
			"bmi_value":    value,
			"bmi_category": category,
			"advice":       bmiAdvice[category],
		})
	}
}

func BMIHistoryHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		limit := 10
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		rows, err := db.Query(
			`SELECT id, user_id, height_cm, weight_kg, bmi_value, bmi_category, COALESCE(notes, ''), recorded_at
			FROM bmi_records WHERE user_id = ? ORDER BY recorded_at DESC LIMIT ?`,
			userID, limit,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		records := []models.BMIRecord{}
		for rows.Next() {
			var r models.BMIRecord
			if err := rows.Scan(&r.ID, &r.UserID, &r.HeightCm, &r.WeightKg, &r.Value, &r.Category, &r.Notes, &r.Recorded); err != nil {
				return err
			}
			records = append(records, r)
		}
		return c.JSON(records)
	}
}

func LatestBMIHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var r models.BMIRecord
		err := db.QueryRow(
			`SELECT id, user_id, height_cm, weight_kg, bmi_value, bmi_category, COALESCE(notes, ''), recorded_at
			FROM bmi_records WHERE user_id = ? ORDER BY recorded_at DESC LIMIT 1`,
			userID,
		).Scan(&r.ID, &r.UserID, &r.HeightCm, &r.WeightKg, &r.Value, &r.Category, &r.Notes, &r.Recorded)
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "No BMI records yet")
		}
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

func DeleteBMIRecordHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid record ID")
		}

		result, err := db.Exec("DELETE FROM bmi_records WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Record not found")
		}
		return c.JSON(fiber.Map{"success": true})
	}
}
