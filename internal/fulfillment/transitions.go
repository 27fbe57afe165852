// Package fulfillment drives order status changes and the stock adjustments
// each change requires.
package fulfillment

import (
	"fmt"

	"github.com/rjpc/storefront/internal/models"
)

// Status is the order lifecycle state, always lowercase once parsed.
type Status = models.OrderStatus

const (
	StatusPending   = models.OrderStatusPending
	StatusShipped   = models.OrderStatusShipped
	StatusCompleted = models.OrderStatusCompleted
	StatusCancelled = models.OrderStatusCancelled
)

var ErrUnknownStatus = models.ErrUnknownStatus

// ParseStatus normalizes a status read from the store or a request.
func ParseStatus(s string) (Status, error) {
	return models.ParseOrderStatus(s)
}

// Effect is the stock side effect that must succeed before a new status is persisted.
type Effect int

const (
	EffectNone Effect = iota
	EffectDeduct
	EffectRestore
)

func (e Effect) String() string {
	switch e {
	case EffectDeduct:
		return "deduct"
	case EffectRestore:
		return "restore"
	default:
		return "none"
	}
}

// Plan returns the side effect for moving from one status to another.
// Cancelling a completed order restores stock even though the operator
// surface never offers that transition.
func Plan(from, to Status) Effect {
	switch {
	case from == StatusPending && to == StatusShipped:
		return EffectDeduct
	case (from == StatusShipped || from == StatusCompleted) && to == StatusCancelled:
		return EffectRestore
	default:
		return EffectNone
	}
}

// AllowedTransitions lists what the back office may move an order to.
// Completed and cancelled are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Allowed reports whether from -> to is an offered transition.
func Allowed(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition when from -> to is not offered.
func ValidateTransition(from, to Status) error {
	if !Allowed(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Actions lists the target statuses offered for an order. Statuses are
// normalized first, so legacy "Shipped" rows still get their buttons.
func Actions(order models.Order) []Status {
	from, err := ParseStatus(string(order.Status))
	if err != nil {
		return []Status{}
	}
	out := make([]Status, len(AllowedTransitions[from]))
	copy(out, AllowedTransitions[from])
	return out
}

// CanShip is the stock pre-check for pending -> shipped: every item's live
// stock must cover its ordered quantity. It is a point-in-time read and is
// not re-validated when the deduction runs.
func CanShip(order models.Order) bool {
	for _, item := range order.Items {
		if item.LiveStock < item.Quantity {
			return false
		}
	}
	return true
}
