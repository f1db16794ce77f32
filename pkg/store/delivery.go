package store

import (
	"context"
	"time"

	"github.com/charmbracelet/roster/pkg/db"
	"github.com/charmbracelet/roster/pkg/db/models"
)

// DeliveryStore is a store for notification deliveries.
type DeliveryStore interface {
	CreateDelivery(ctx context.Context, h db.Handler, d models.NotificationDelivery) error
	ListDeliveries(ctx context.Context, h db.Handler, invitation string) ([]models.NotificationDelivery, error)
	DeleteDeliveriesBefore(ctx context.Context, h db.Handler, before time.Time) (int64, error)
}
