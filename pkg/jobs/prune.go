package jobs

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/roster/pkg/backend"
	"github.com/charmbracelet/roster/pkg/config"
)

func init() {
	Register("prune-deliveries", pruneDeliveries{})
}

type pruneDeliveries struct{}

var _ Runner = pruneDeliveries{}

// Spec implements Runner.
func (pruneDeliveries) Spec(ctx context.Context) string {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return ""
	}
	return cfg.Jobs.PruneDeliveries
}

// Func implements Runner.
func (pruneDeliveries) Func(ctx context.Context) func() {
	cfg := config.FromContext(ctx)
	be := backend.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("jobs.prune")
	return func() {
		retention := cfg.DeliveryRetention()
		if retention <= 0 {
			logger.Debug("delivery retention disabled")
			return
		}

		n, err := be.PruneDeliveries(ctx, retention)
		if err != nil {
			logger.Error("error pruning deliveries", "err", err)
			return
		}
		logger.Info("pruned deliveries", "count", n, "retention", retention)
	}
}
