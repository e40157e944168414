package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// EventPublisher receives a notification after every successful status
// transition. Implementations must not block indefinitely; publish failures
// are logged by callers and never roll back the transition.
type EventPublisher interface {
	OrderStatusChanged(ctx context.Context, orderID string, from, to Status, at time.Time) error
}

// Lifecycle enforces the order status graph. It checks the transition
// adjacency only; whether the caller is allowed to transition orders at all
// is decided at the identity boundary.
type Lifecycle struct {
	orders Repository
	events EventPublisher
	now    func() time.Time
}

// NewLifecycle creates a Lifecycle over the given order repository.
func NewLifecycle(orders Repository, events EventPublisher) *Lifecycle {
	return &Lifecycle{orders: orders, events: events, now: time.Now}
}

// Transition moves the order to the target status, updating UpdatedAt and
// publishing a status-changed event. It fails with InvalidTransitionError
// when the move is not in the lifecycle graph; the failure is scoped to this
// one action.
func (l *Lifecycle) Transition(ctx context.Context, orderID string, to Status) (*Order, error) {
	if !to.IsValid() {
		return nil, &InvalidTransitionError{To: to}
	}

	o, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", orderID)
	}

	if !o.Status.CanTransitionTo(to) {
		return nil, &InvalidTransitionError{From: o.Status, To: to}
	}

	now := l.now()
	if err := l.orders.UpdateStatus(ctx, orderID, to, now); err != nil {
		return nil, errors.Wrapf(err, "update order %s status", orderID)
	}

	from := o.Status
	o.Status = to
	o.UpdatedAt = now

	if l.events != nil {
		if err := l.events.OrderStatusChanged(ctx, orderID, from, to, now); err != nil {
			// The transition is already durable; event delivery is best effort.
			zctx.From(ctx).Warn("publish order status change",
				zap.String("order_id", orderID),
				zap.String("to", to.String()),
				zap.Error(err),
			)
		}
	}

	return o, nil
}
