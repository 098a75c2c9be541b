// Package worker runs the background expiry of abandoned checkouts. An order
// that never progresses past PENDING_PAYMENT is invisible to merchants and
// couriers, but it clutters the customer's active list forever; after a TTL
// the worker moves it to CANCELLED.
package worker

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/feiradobairro/marketplace/internal/domain/order"
	"github.com/feiradobairro/marketplace/internal/notify"
)

// ExpiryWorker cancels stale unpaid orders on an interval.
type ExpiryWorker struct {
	orders   order.Repository
	events   notify.Events
	lg       *zap.Logger
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewExpiryWorker creates a worker that cancels PENDING_PAYMENT orders older
// than ttl, scanning every interval.
func NewExpiryWorker(
	orders order.Repository,
	events notify.Events,
	lg *zap.Logger,
	ttl, interval time.Duration,
) *ExpiryWorker {
	return &ExpiryWorker{
		orders:   orders,
		events:   events,
		lg:       lg,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// Run scans until the context is cancelled. Scan failures are logged and the
// next tick tries again; Run only returns the context error.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.lg.Info("expiry worker started",
		zap.Duration("ttl", w.ttl),
		zap.Duration("interval", w.interval),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Sweep(ctx); err != nil {
				w.lg.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep cancels every PENDING_PAYMENT order older than the TTL. A conflict on
// an individual order means it was paid or already cancelled between the list
// and the update; it is skipped, not an error.
func (w *ExpiryWorker) Sweep(ctx context.Context) error {
	cutoff := w.now().Add(-w.ttl)

	stale, err := w.orders.ListStalePendingPayment(ctx, cutoff)
	if err != nil {
		return errors.Wrap(err, "list stale unpaid orders")
	}

	for _, o := range stale {
		err := w.orders.UpdateStatus(ctx, o.ID, order.StatusPendingPayment, order.StatusCancelled)
		if errors.Is(err, order.ErrConflict) || errors.Is(err, order.ErrNotFound) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "cancel stale order %s", o.ID)
		}

		w.lg.Info("cancelled stale unpaid order",
			zap.String("order_id", o.ID),
			zap.Time("created_at", o.CreatedAt),
		)
		w.events.Notify(ctx, notify.Event{
			Type: notify.OrderExpired, OrderID: o.ID, At: w.now(),
		})
	}
	return nil
}
