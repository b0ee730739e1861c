package events

import (
	"context"
	"fmt"
	"time"

	"resumescreen/internal/errors"

	"github.com/go-resty/resty/v2"
)

// WebhookEmitter posts each event as a JSON Envelope to a URL
type WebhookEmitter struct {
	client *resty.Client
	url    string
	now    func() time.Time
}

// NewWebhookEmitter creates a webhook emitter. A non-empty secret is sent as
// a bearer token.
func NewWebhookEmitter(url, secret string, timeout time.Duration) *WebhookEmitter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "resumescreen-events")
	if secret != "" {
		client.SetAuthToken(secret)
	}
	return &WebhookEmitter{client: client, url: url, now: time.Now}
}

// Emit posts the event and fails on transport errors or non-2xx replies
func (w *WebhookEmitter) Emit(ctx context.Context, name string, payload any) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(Envelope{Event: name, Timestamp: w.now().UTC(), Payload: payload}).
		Post(w.url)
	if err != nil {
		return errors.NewNetworkError("WEBHOOK_FAILED", fmt.Sprintf("failed to deliver %s event", name), err)
	}
	if resp.IsError() {
		return errors.NewNetworkError("WEBHOOK_REJECTED",
			fmt.Sprintf("webhook rejected %s event: %s", name, resp.Status()), nil).
			WithContext("status_code", resp.StatusCode())
	}
	return nil
}
