package service

import (
	"errors"
	"fmt"

	"github.com/empanadas-abdonur/api/internal/enum"
)

// ErrInvalidTransition marks a status change that the order lifecycle does
// not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can move to.
// completed and cancelled are terminal and have no entry.
var allowedTransitions = map[string][]string{
	enum.OrderStatusNew:       {enum.OrderStatusConfirmed, enum.OrderStatusCancelled},
	enum.OrderStatusConfirmed: {enum.OrderStatusCompleted, enum.OrderStatusCancelled},
}

// ValidateStatusTransition checks whether current may move to next.
// Jumping states (new straight to completed) and acting on a terminal
// state both fail.
func ValidateStatusTransition(current, next string) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("%w: cannot transition from %s", ErrInvalidTransition, current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, current, next)
}
