package execution

import (
	"errors"

	"dcengine/internal/schema"
)

var (
	// ErrUnknownOrder is returned when a status transition references an
	// order_id the lifecycle tracker has never seen.
	ErrUnknownOrder = errors.New("execution: unknown order")
	// ErrInvalidTransition is returned when a transition is attempted on
	// an order that has already reached a terminal status.
	ErrInvalidTransition = errors.New("execution: invalid status transition")
)

// Lifecycle tracks each order's status as it moves from pending through a
// terminal outcome (filled, partially filled, rejected, or cancelled).
type Lifecycle struct {
	orders map[string]schema.ExecutionStatus
}

// NewLifecycle creates an empty lifecycle tracker.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{orders: make(map[string]schema.ExecutionStatus)}
}

// Open registers a new order in the pending state.
func (l *Lifecycle) Open(orderID string) {
	l.orders[orderID] = schema.ExecutionPending
}

// Status returns the current status for an order, if tracked.
func (l *Lifecycle) Status(orderID string) (schema.ExecutionStatus, bool) {
	s, ok := l.orders[orderID]
	return s, ok
}

// Transition moves an order to a new status. It rejects transitions out of
// a terminal status (filled, rejected, cancelled); partially_filled is the
// only non-terminal status besides pending.
func (l *Lifecycle) Transition(orderID string, next schema.ExecutionStatus) error {
	current, ok := l.orders[orderID]
	if !ok {
		return ErrUnknownOrder
	}
	if isTerminal(current) {
		return ErrInvalidTransition
	}
	l.orders[orderID] = next
	return nil
}

func isTerminal(s schema.ExecutionStatus) bool {
	switch s {
	case schema.ExecutionFilled, schema.ExecutionRejected, schema.ExecutionCancelled:
		return true
	default:
		return false
	}
}
