package orders

import (
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	pkgerrors "github.com/shopkartlabs/shopkart-backend/pkg/errors"
)

// allowedTransitions is the single source of truth for the order lifecycle.
// CANCELLED has no outgoing edges; DELIVERED only leads into the return
// flow, and that edge is reserved for the returns service — UpdateStatus
// refuses to take it directly.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:         {enums.OrderStatusPlaced, enums.OrderStatusCancelled},
	enums.OrderStatusPlaced:          {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:         {enums.OrderStatusDelivered},
	enums.OrderStatusDelivered:       {enums.OrderStatusReturnRequested},
	enums.OrderStatusCancelled:       {},
	enums.OrderStatusReturnRequested: {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
}

// Transition validates a lifecycle move against the transition table.
func Transition(from, to enums.OrderStatus) error {
	targets, ok := allowedTransitions[from]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "unknown order status").
			WithDetails(map[string]any{"status": from})
	}
	for _, target := range targets {
		if target == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
		WithDetails(map[string]any{"from": from, "to": to})
}

// CanCancel reports whether cancellation is allowed from the given status.
// Shipped orders must go through delivery and a return instead.
func CanCancel(status enums.OrderStatus) bool {
	return Transition(status, enums.OrderStatusCancelled) == nil
}
