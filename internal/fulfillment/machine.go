package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rjpc/storefront/internal/logger"
	"github.com/rjpc/storefront/internal/models"
	"go.uber.org/zap"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderBusy         = errors.New("order is already being processed")
	ErrInsufficientStock = errors.New("insufficient stock to ship order")
	ErrMissingVariation  = errors.New("order item has no variation")
)

// StockAdjuster is the remote stock accounting surface. Each call is assumed
// atomic and authoritative on the store side.
type StockAdjuster interface {
	DeductStock(ctx context.Context, variationID int64, quantity int) error
	RestoreStock(ctx context.Context, variationID int64, quantity int) error
}

// StatusWriter persists an order's new status.
type StatusWriter interface {
	UpdateOrderStatus(ctx context.Context, orderID int64, status Status) error
}

// AdjustmentError reports which item's stock call failed. Calls made before
// it are not rolled back.
type AdjustmentError struct {
	Effect      Effect
	VariationID int64
	Applied     int
	Err         error
}

func (e *AdjustmentError) Error() string {
	return fmt.Sprintf("%s stock for variation %d failed after %d applied: %v", e.Effect, e.VariationID, e.Applied, e.Err)
}

func (e *AdjustmentError) Unwrap() error { return e.Err }

// Machine executes order transitions. A per-order in-flight flag stops the
// same order from being transitioned twice at once; different orders are
// not coordinated.
type Machine struct {
	stock  StockAdjuster
	status StatusWriter

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func NewMachine(stock StockAdjuster, status StatusWriter) *Machine {
	return &Machine{
		stock:    stock,
		status:   status,
		inFlight: make(map[int64]struct{}),
	}
}

// Transition moves order to target. Stock calls run one per item in stored
// order and stop at the first failure; the status is written only after all
// of them succeed.
func (m *Machine) Transition(ctx context.Context, order models.Order, target Status) error {
	// 1. --- Normalize & validate ---
	from, err := ParseStatus(string(order.Status))
	if err != nil {
		return fmt.Errorf("order %d: %w", order.ID, err)
	}
	to, err := ParseStatus(string(target))
	if err != nil {
		return err
	}
	if err := ValidateTransition(from, to); err != nil {
		return err
	}

	// 2. --- Processing flag ---
	if !m.acquire(order.ID) {
		return ErrOrderBusy
	}
	defer m.release(order.ID)

	// 3. --- Pre-checks ---
	effect := Plan(from, to)
	if effect == EffectDeduct && !CanShip(order) {
		return ErrInsufficientStock
	}
	if effect != EffectNone {
		for _, item := range order.Items {
			if item.VariationID == nil {
				return fmt.Errorf("%w: product %d", ErrMissingVariation, item.ProductID)
			}
		}
	}

	// 4. --- Compensating calls ---
	for i, item := range order.Items {
		if effect == EffectNone {
			break
		}
		var callErr error
		if effect == EffectDeduct {
			callErr = m.stock.DeductStock(ctx, *item.VariationID, item.Quantity)
		} else {
			callErr = m.stock.RestoreStock(ctx, *item.VariationID, item.Quantity)
		}
		if callErr != nil {
			adjErr := &AdjustmentError{Effect: effect, VariationID: *item.VariationID, Applied: i, Err: callErr}
			logger.Error(ctx, "Stock adjustment failed, order status not advanced", adjErr,
				zap.Int64("order_id", order.ID),
				zap.String("from", string(from)),
				zap.String("to", string(to)),
			)
			return adjErr
		}
	}

	// 5. --- Persist status ---
	if err := m.status.UpdateOrderStatus(ctx, order.ID, to); err != nil {
		return fmt.Errorf("update order %d status: %w", order.ID, err)
	}

	logger.Info(ctx, "Order status updated",
		zap.Int64("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Stringer("effect", effect),
	)
	return nil
}

// Busy reports whether a transition for orderID is in flight.
func (m *Machine) Busy(orderID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inFlight[orderID]
	return ok
}

func (m *Machine) acquire(orderID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inFlight[orderID]; ok {
		return false
	}
	m.inFlight[orderID] = struct{}{}
	return true
}

func (m *Machine) release(orderID int64) {
	m.mu.Lock()
	delete(m.inFlight, orderID)
	m.mu.Unlock()
}
