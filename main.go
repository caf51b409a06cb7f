package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"vital/internal/api"
	"vital/internal/audio"
	"vital/internal/auth"
	"vital/internal/config"
	"vital/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	auth.Configure(cfg.Auth)

	db, err := database.Initialize(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	ringtones, err := audio.NewStore(cfg.Ringtone.Dir, cfg.Ringtone.MaxUploadBytes)
	if err != nil {
		log.Fatal("Failed to initialize ringtone store:", err)
	}

	push := api.NewWebPush(cfg.Push)

	// Background push notifier for due reminders
	if push.Configured() {
		log.Printf("Starting due-reminder push notifier (interval %s)", cfg.NotifierInterval())
		notifier := api.NewDueNotifier(db, push)
		go notifier.Run(context.Background(), cfg.NotifierInterval())
	} else {
		log.Println("Web push not configured; due-reminder push notifier disabled")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Ringtone.MaxUploadBytes) + 1024*1024, // headroom for multipart framing
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New())

	allowedOrigins := strings.TrimSpace(cfg.Server.AllowedOrigins)
	if allowedOrigins != "*" {
		parts := strings.Split(allowedOrigins, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		allowedOrigins = strings.Join(parts, ",")
	}
	log.Printf("CORS allowed origins: %s", allowedOrigins)

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		// Cookies need credentials, but Fiber rejects credentials with a
		// wildcard origin.
		AllowCredentials: allowedOrigins != "*",
	}))

	// Setup routes
	api.SetupRoutes(app, db, ringtones, push)

	log.Printf("Server starting on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
