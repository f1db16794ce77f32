// Package notify delivers invitation notifications to invitees.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/roster/pkg/config"
	"github.com/charmbracelet/roster/pkg/proto"
)

// Event is the notification event sent for new invitations.
const Event = "invitation"

// Result describes a delivery attempt.
type Result struct {
	// Status is the response status reported by the channel, if any.
	Status int
}

// Notifier sends notifications over a single channel.
type Notifier interface {
	// Name returns the channel name.
	Name() string
	// Notify sends the notification.
	Notify(ctx context.Context, n proto.Notification) (Result, error)
}

// FromConfig returns the notifiers enabled by the configuration. When no
// channel is configured, notifications are logged.
func FromConfig(cfg *config.Config) ([]Notifier, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	var ns []Notifier
	if cfg.Notify.Webhook.URL != "" {
		w, err := NewWebhook(cfg.Notify.Webhook)
		if err != nil {
			return nil, fmt.Errorf("webhook: %w", err)
		}
		ns = append(ns, w)
	}

	if cfg.Notify.SMTP.Host != "" {
		ns = append(ns, NewSMTP(cfg.Notify.SMTP))
	}

	if len(ns) == 0 {
		ns = append(ns, Log{})
	}

	return ns, nil
}

func expiry(n proto.Notification) string {
	if n.ExpiresAt == nil {
		return "never"
	}
	return n.ExpiresAt.UTC().Format(time.RFC1123)
}
