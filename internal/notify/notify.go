// Package notify carries order lifecycle events to the notification
// collaborator. Delivery is best-effort: the lifecycle manager emits and
// moves on, it never blocks a transition on notification delivery.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// EventType identifies a lifecycle event.
type EventType string

const (
	OrderCreated   EventType = "order_created"
	OrderPaid      EventType = "order_paid"
	ItemDecided    EventType = "item_decided"
	OrderApproved  EventType = "order_approved"
	OrderRejected  EventType = "order_rejected"
	OrderClaimed   EventType = "order_claimed"
	OrderEnRoute   EventType = "order_en_route"
	CourierArrived EventType = "courier_arrived"
	OrderDelivered EventType = "order_delivered"
	OrderExpired   EventType = "order_expired"
)

// Event is a single lifecycle occurrence. ActorID is the customer, merchant,
// or courier that caused the transition; system transitions leave it empty.
type Event struct {
	Type    EventType
	OrderID string
	ItemID  string
	ActorID string
	At      time.Time
}

// Events receives lifecycle events.
type Events interface {
	Notify(ctx context.Context, ev Event)
}

// LogEvents writes every event to the service log. It is the default
// implementation; a push-notification backend would satisfy the same
// interface.
type LogEvents struct {
	lg *zap.Logger
}

// NewLogEvents returns an Events implementation backed by the given logger.
func NewLogEvents(lg *zap.Logger) *LogEvents {
	return &LogEvents{lg: lg}
}

// Notify logs the event.
func (n *LogEvents) Notify(_ context.Context, ev Event) {
	n.lg.Info("order event",
		zap.String("type", string(ev.Type)),
		zap.String("order_id", ev.OrderID),
		zap.String("item_id", ev.ItemID),
		zap.String("actor_id", ev.ActorID),
		zap.Time("at", ev.At),
	)
}

// Discard drops all events. Useful in tests.
type Discard struct{}

func (Discard) Notify(context.Context, Event) {}
