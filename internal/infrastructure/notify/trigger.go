// Package notify reaches the notification channels that run outside this
// service: HTTP trigger endpoints and the NATS event bus.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPTrigger posts {"meeting_id": id} to a trigger endpoint
type HTTPTrigger struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPTrigger creates a trigger for url
func NewHTTPTrigger(name, url string, timeout time.Duration) *HTTPTrigger {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPTrigger{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies the trigger in logs
func (t *HTTPTrigger) Name() string {
	return t.name
}

type triggerRequest struct {
	MeetingID int64 `json:"meeting_id"`
}

// Trigger notifies the endpoint that a meeting's insights are ready
func (t *HTTPTrigger) Trigger(ctx context.Context, meetingID int64) error {
	b, err := json.Marshal(triggerRequest{MeetingID: meetingID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s trigger: %w", t.name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s trigger returned status %d", t.name, resp.StatusCode)
	}
	return nil
}
