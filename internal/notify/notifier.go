// Package notify reports noteworthy generation outcomes to operators.
package notify

import "context"

// Notification represents a notification message.
type Notification struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier is the interface for sending notifications.
type Notifier interface {
	// Send sends a notification.
	Send(ctx context.Context, notification Notification) error
}

// Multi fans a notification out to several notifiers and returns the first error.
type Multi []Notifier

// Send delivers to every notifier even if one fails.
func (m Multi) Send(ctx context.Context, n Notification) error {
	var first error
	for _, notifier := range m {
		if err := notifier.Send(ctx, n); err != nil && first == nil {
			first = err
		}
	}
	return first
}
