package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookNotifier POSTs notifications as JSON to a URL.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		client: resty.New().SetTimeout(10 * time.Second),
		url:    url,
	}
}

// Send posts {"subject": ..., "body": ...}. Any non-2xx answer is an error.
func (w *WebhookNotifier) Send(ctx context.Context, n Notification) error {
	resp, err := w.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(n).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook error (status %d): %s", resp.StatusCode(), resp.String())
	}
	return nil
}
