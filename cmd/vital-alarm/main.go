// vital-alarm runs the reminder delivery engine against a running
// backend: it polls for due reminders and surfaces each occurrence as a
// log line with the matching tone pattern.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vital/internal/alarm"
	"vital/internal/audio"
	"vital/internal/client"
	"vital/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	baseURL := flag.String("url", "http://localhost:3000", "backend base URL")
	token := flag.String("token", "", "access token (defaults to VITAL_TOKEN)")
	ringtone := flag.String("ringtone", audio.DefaultPattern, "tone pattern to play on alert")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tok := *token
	if tok == "" {
		tok = os.Getenv("VITAL_TOKEN")
	}
	if tok == "" {
		log.Fatal("No access token: pass -token or set VITAL_TOKEN")
	}

	player := audio.NewPlayer(nil)
	if !player.SetRingtone(*ringtone) {
		log.Fatalf("Unknown ringtone %q", *ringtone)
	}

	boundary := client.New(*baseURL, tok, 10*time.Second)
	engine := alarm.NewEngine(boundary, alarm.Options{
		PollInterval:   cfg.PollInterval(),
		SnoozeDuration: cfg.SnoozeDuration(),
	}, alarm.LogPresenter{}, alarm.NewAudioPresenter(player))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Polling %s every %s", *baseURL, cfg.PollInterval())
	if err := engine.Run(ctx); err != nil {
		log.Fatalf("Engine stopped: %v", err)
	}
}
