package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"vital/internal/config"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/gofiber/fiber/v2"
)

// PushPayload represents the notification payload sent to clients
type PushPayload struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Icon  string                 `json:"icon,omitempty"`
	Tag   string                 `json:"tag,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

type WebPush struct {
	cfg config.PushConfig
}

func NewWebPush(cfg config.PushConfig) *WebPush {
	return &WebPush{cfg: cfg}
}

func (w *WebPush) Configured() bool {
	return w.cfg.VAPIDPublicKey != "" && w.cfg.VAPIDPrivateKey != "" && w.cfg.Subject != ""
}

func (w *WebPush) options() *webpush.Options {
	return &webpush.Options{
		Subscriber:      w.cfg.Subject,
		VAPIDPublicKey:  w.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: w.cfg.VAPIDPrivateKey,
		TTL:             30,
	}
}

// SendToUser sends a push notification to all subscriptions for a user.
// Expired or key-mismatched subscriptions are pruned as they surface.
func (w *WebPush) SendToUser(db *sql.DB, userID int, payload PushPayload) error {
	if !w.Configured() {
		log.Println("Web push not configured - skipping notification")
		return nil
	}

	rows, err := db.Query(
		"SELECT endpoint, p256dh, auth FROM push_subscriptions WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to fetch subscriptions: %w", err)
	}
	defer rows.Close()

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	options := w.options()
	successCount := 0
	failCount := 0
	subscriptionCount := 0

	for rows.Next() {
		subscriptionCount++
		var endpoint, p256dh, auth string
		if err := rows.Scan(&endpoint, &p256dh, &auth); err != nil {
			log.Printf("Error scanning subscription: %v", err)
			failCount++
			continue
		}

		subscription := &webpush.Subscription{
			Endpoint: endpoint,
			Keys: webpush.Keys{
				P256dh: p256dh,
				Auth:   auth,
			},
		}

		resp, err := webpush.SendNotification(payloadJSON, subscription, options)
		if err != nil {
			log.Printf("Failed to send push to %s: %v", endpoint, err)
			failCount++

			// Subscription expired or gone: remove it
			if resp != nil {
				if resp.StatusCode == 410 || resp.StatusCode == 404 {
					_, _ = db.Exec("DELETE FROM push_subscriptions WHERE endpoint = ?", endpoint)
					log.Printf("Removed expired subscription: %s", endpoint)
				}
				resp.Body.Close()
			}
			continue
		}

		if resp != nil {
			if resp.StatusCode >= 400 {
				body, _ := io.ReadAll(resp.Body)
				log.Printf("Push service error response (%d): %s", resp.StatusCode, string(body))
			}
			resp.Body.Close()

			// 403 means the VAPID keys do not match this subscription; drop
			// it so the client re-subscribes with the current keys.
			if resp.StatusCode == 403 {
				_, _ = db.Exec("DELETE FROM push_subscriptions WHERE endpoint = ?", endpoint)
				log.Printf("Deleted mismatched subscription (403 Forbidden): %s", endpoint)
				failCount++
				continue
			}
		}

		successCount++
	}

	log.Printf("Push summary for user %d: subscriptions=%d, success=%d, failed=%d", userID, subscriptionCount, successCount, failCount)

	if subscriptionCount == 0 {
		return fmt.Errorf("no push subscriptions found for user %d", userID)
	}
	if failCount > 0 && successCount == 0 {
		return fmt.Errorf("failed to send any push notifications (attempted %d)", failCount)
	}
	return nil
}

// VapidPublicKeyHandler returns the VAPID public key for client
// subscription.
func VapidPublicKeyHandler(wp *WebPush) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if wp.cfg.VAPIDPublicKey == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Push notifications not configured")
		}
		return c.JSON(fiber.Map{"publicKey": wp.cfg.VAPIDPublicKey})
	}
}
