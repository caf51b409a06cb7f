// Package client implements the alarm engine's Boundary over the HTTP
// API, for sessions that run the delivery engine against a remote
// backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vital/internal/alarm"
	"vital/internal/models"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a boundary client. The per-request timeout bounds each
// poll so a hung backend fails the tick instead of wedging the engine.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetDueReminders(ctx context.Context) ([]models.DueReminder, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/reminders/due", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("due reminders request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("due reminders: %w", alarm.ErrNotAuthenticated)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("due reminders: unexpected status %d", resp.StatusCode)
	}

	var out models.DueRemindersResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("due reminders: decode: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("due reminders: backend reported failure")
	}
	return out.Reminders, nil
}

func (c *Client) MarkComplete(ctx context.Context, reminderID int) error {
	url := fmt.Sprintf("%s/api/reminders/%d/complete", c.baseURL, reminderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(nil))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("mark complete: %w", alarm.ErrNotAuthenticated)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mark complete: unexpected status %d", resp.StatusCode)
	}
	return nil
}
