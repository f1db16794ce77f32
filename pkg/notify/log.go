package notify

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/roster/pkg/proto"
)

// Log writes notifications to the logger in the context. It is used when no
// delivery channel is configured.
type Log struct{}

var _ Notifier = Log{}

// Name implements Notifier.
func (Log) Name() string {
	return "log"
}

// Notify implements Notifier.
func (Log) Notify(ctx context.Context, n proto.Notification) (Result, error) {
	log.FromContext(ctx).WithPrefix("notify").Info("invitation",
		"id", n.InvitationID,
		"email", n.Email,
		"organization", n.OrganizationName,
		"url", n.URL,
		"expires", expiry(n),
	)
	return Result{}, nil
}
