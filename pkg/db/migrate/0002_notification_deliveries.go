package migrate

import (
	"context"

	"github.com/charmbracelet/roster/pkg/db"
)

const (
	notificationDeliveriesName    = "notification deliveries"
	notificationDeliveriesVersion = 2
)

var notificationDeliveries = Migration{
	Version: notificationDeliveriesVersion,
	Name:    notificationDeliveriesName,
	Migrate: func(ctx context.Context, h db.Handler) error {
		return migrateUp(ctx, h, notificationDeliveriesVersion, notificationDeliveriesName)
	},
	Rollback: func(ctx context.Context, h db.Handler) error {
		return migrateDown(ctx, h, notificationDeliveriesVersion, notificationDeliveriesName)
	},
}
