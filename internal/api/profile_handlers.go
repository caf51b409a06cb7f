package api

import (
	"database/sql"
	"time"

	"vital/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SaveProfileRequest struct {
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	DateOfBirth   string  `json:"date_of_birth,omitempty"`
	Gender        string  `json:"gender,omitempty"`
	ActivityLevel string  `json:"activity_level,omitempty"`
}

// SaveProfileHandler creates or replaces the user's health profile.
func SaveProfileHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var req SaveProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if req.HeightCm < 50 || req.HeightCm > 300 {
			return fiber.NewError(fiber.StatusBadRequest, "Height must be between 50 and 300 cm")
		}
		if req.WeightKg < 10 || req.WeightKg > 500 {
			return fiber.NewError(fiber.StatusBadRequest, "Weight must be between 10 and 500 kg")
		}

		var dob interface{}
		if req.DateOfBirth != "" {
			d, err := time.Parse("2006-01-02", req.DateOfBirth)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid date of birth, expected YYYY-MM-DD")
			}
			dob = d.Format("2006-01-02")
		}

		_, err := db.Exec(
			`INSERT INTO user_profiles (user_id, height_cm, weight_kg, date_of_birth, gender, activity_level, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(user_id) DO UPDATE SET
				height_cm = excluded.height_cm,
				weight_kg = excluded.weight_kg,
				date_of_birth = excluded.date_of_birth,
				gender = excluded.gender,
				activity_level = excluded.activity_level,
				updated_at = CURRENT_TIMESTAMP`,
			userID, req.HeightCm, req.WeightKg, dob, req.Gender, req.ActivityLevel,
		)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "Profile saved"})
	}
}

func GetProfileHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var p models.Profile
		var dob sql.NullTime
		var gender, level sql.NullString
		err := db.QueryRow(
			`SELECT user_id, height_cm, weight_kg, date_of_birth, gender, activity_level, updated_at
			FROM user_profiles WHERE user_id = ?`,
			userID,
		).Scan(&p.UserID, &p.HeightCm, &p.WeightKg, &dob, &gender, &level, &p.UpdatedAt)
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "No profile yet")
		}
		if err != nil {
			return err
		}
		if dob.Valid {
			d := dob.Time
			p.DateOfBirth = &d
		}
		p.Gender = gender.String
		p.ActivityLevel = level.String
		return c.JSON(p)
	}
}

type UpdateEmailRequest struct {
	Email *string `json:"email"`
}

func UpdateUserEmailHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var req UpdateEmailRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var emailValue interface{}
		if req.Email != nil && *req.Email != "" {
			if len(*req.Email) < 3 || len(*req.Email) > 254 {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid email format")
			}
			emailValue = *req.Email
		}

		if _, err := db.Exec("UPDATE users SET email = ? WHERE id = ?", emailValue, userID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to update email")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Email updated"})
	}
}
