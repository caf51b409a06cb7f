package api

import (
	"database/sql"

	"vital/internal/audio"
	"vital/internal/models"

	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, db *sql.DB, ringtones *audio.Store, push *WebPush) {
	api := app.Group("/api")

	// Configuration endpoint (public)
	api.Get("/config", func(c *fiber.Ctx) error {
		tones := []fiber.Map{}
		for _, p := range audio.Patterns() {
			tones = append(tones, fiber.Map{"id": p.ID, "name": p.Name, "icon": p.Icon})
		}
		return c.JSON(fiber.Map{
			"categories": models.Categories,
			"ringtones":  tones,
		})
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", RegisterHandler(db))
	auth.Post("/login", LoginHandler(db))
	auth.Post("/refresh", RefreshTokenHandler(db))
	auth.Post("/logout", LogoutHandler(db))

	// VAPID public key endpoint (public - must be before protected routes)
	api.Get("/push/vapid-public-key", VapidPublicKeyHandler(push))

	// Protected routes
	protected := api.Group("/", AuthMiddleware())

	// Reminder routes. The due-query comes before :id so it routes.
	reminders := protected.Group("/reminders")
	reminders.Get("/due", DueRemindersHandler(db))
	reminders.Post("/", CreateReminderHandler(db))
	reminders.Get("/", ListRemindersHandler(db))
	reminders.Put("/:id", UpdateReminderHandler(db))
	reminders.Delete("/:id", DeleteReminderHandler(db))
	reminders.Post("/:id/toggle", ToggleReminderHandler(db))
	reminders.Post("/:id/complete", CompleteReminderHandler(db))

	// Custom ringtone routes
	ringtone := protected.Group("/ringtone")
	ringtone.Get("/", GetRingtoneHandler(ringtones))
	ringtone.Get("/file", ServeRingtoneHandler(ringtones))
	ringtone.Post("/", UploadRingtoneHandler(ringtones))
	ringtone.Delete("/", DeleteRingtoneHandler(ringtones))

	// Activity routes
	activity := protected.Group("/activity")
	activity.Post("/", LogActivityHandler(db))
	activity.Get("/today", TodayActivityHandler(db))
	activity.Get("/weekly", WeeklySummaryHandler(db))
	activity.Post("/water", AddWaterHandler(db))
	activity.Post("/steps", AddStepsHandler(db))

	// BMI routes
	bmi := protected.Group("/bmi")
	bmi.Post("/", CalculateBMIHandler(db))
	bmi.Get("/", BMIHistoryHandler(db))
	bmi.Get("/latest", LatestBMIHandler(db))
	bmi.Delete("/:id", DeleteBMIRecordHandler(db))

	// Profile routes
	profile := protected.Group("/profile")
	profile.Get("/", GetProfileHandler(db))
	profile.Put("/", SaveProfileHandler(db))
	profile.Put("/email", UpdateUserEmailHandler(db))

	// Push subscription routes
	pushGroup := protected.Group("/push")
	pushGroup.Post("/subscribe", SubscribePushHandler(db))
	pushGroup.Delete("/unsubscribe", UnsubscribePushHandler(db))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
