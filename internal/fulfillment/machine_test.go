package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rjpc/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	Op          string
	VariationID int64
	Quantity    int
}

// fakeBackend records calls in order and can fail on a given variation.
type fakeBackend struct {
	mu       sync.Mutex
	calls    []call
	failOn   int64
	statuses map[int64]Status
	writeErr error
	block    chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{statuses: map[int64]Status{}}
}

func (f *fakeBackend) record(op string, id int64, qty int) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op, id, qty})
	if id == f.failOn {
		return errors.New("rpc rejected")
	}
	return nil
}

func (f *fakeBackend) DeductStock(ctx context.Context, variationID int64, quantity int) error {
	return f.record("deduct", variationID, quantity)
}

func (f *fakeBackend) RestoreStock(ctx context.Context, variationID int64, quantity int) error {
	return f.record("restore", variationID, quantity)
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, orderID int64, status Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.statuses[orderID] = status
	return nil
}

const (
	timeout = time.Second
	tick    = 5 * time.Millisecond
)

func vid(v int64) *int64 { return &v }

func order(id int64, status string, items ...models.OrderItem) models.Order {
	return models.Order{ID: id, Status: models.OrderStatus(status), Items: items}
}

func TestPlan(t *testing.T) {
	assert.Equal(t, EffectDeduct, Plan(StatusPending, StatusShipped))
	assert.Equal(t, EffectRestore, Plan(StatusShipped, StatusCancelled))
	assert.Equal(t, EffectRestore, Plan(StatusCompleted, StatusCancelled))
	assert.Equal(t, EffectNone, Plan(StatusShipped, StatusCompleted))
	assert.Equal(t, EffectNone, Plan(StatusPending, StatusCancelled))
	assert.Equal(t, EffectNone, Plan(StatusPending, StatusPending))
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(StatusPending, StatusShipped))
	assert.True(t, Allowed(StatusPending, StatusCancelled))
	assert.True(t, Allowed(StatusShipped, StatusCompleted))
	assert.True(t, Allowed(StatusShipped, StatusCancelled))

	assert.False(t, Allowed(StatusCompleted, StatusShipped))
	assert.False(t, Allowed(StatusCompleted, StatusCancelled))
	assert.False(t, Allowed(StatusCancelled, StatusPending))
	assert.False(t, Allowed(StatusPending, StatusPending))
	assert.False(t, Allowed(StatusPending, StatusCompleted))
}

func TestActionsNormalizesCasing(t *testing.T) {
	assert.Equal(t, []Status{StatusCompleted, StatusCancelled}, Actions(order(1, "Shipped")))
	assert.Empty(t, Actions(order(1, "completed")))
	assert.Empty(t, Actions(order(1, "bogus")))
}

func TestCanShip(t *testing.T) {
	ok := order(1, "pending", models.OrderItem{Quantity: 2, LiveStock: 2})
	short := order(2, "pending", models.OrderItem{Quantity: 2, LiveStock: 5}, models.OrderItem{Quantity: 3, LiveStock: 1})
	assert.True(t, CanShip(ok))
	assert.False(t, CanShip(short))
}

func TestTransition_ShipDeductsThenPersists(t *testing.T) {
	be := newFakeBackend()
	m := NewMachine(be, be)
	o := order(10, "pending", models.OrderItem{VariationID: vid(1), Quantity: 2, LiveStock: 5})

	require.NoError(t, m.Transition(context.Background(), o, StatusShipped))

	assert.Equal(t, []call{{"deduct", 1, 2}}, be.calls)
	assert.Equal(t, StatusShipped, be.statuses[10])
}

func TestTransition_DeductFailureKeepsStatus(t *testing.T) {
	be := newFakeBackend()
	be.failOn = 1
	m := NewMachine(be, be)
	o := order(10, "pending", models.OrderItem{VariationID: vid(1), Quantity: 2, LiveStock: 5})

	err := m.Transition(context.Background(), o, StatusShipped)

	var adjErr *AdjustmentError
	require.ErrorAs(t, err, &adjErr)
	assert.Equal(t, int64(1), adjErr.VariationID)
	assert.Equal(t, 0, adjErr.Applied)
	_, written := be.statuses[10]
	assert.False(t, written)
}

func TestTransition_StopsAtFirstFailureWithoutRollback(t *testing.T) {
	be := newFakeBackend()
	be.failOn = 2
	m := NewMachine(be, be)
	o := order(11, "shipped",
		models.OrderItem{VariationID: vid(1), Quantity: 1},
		models.OrderItem{VariationID: vid(2), Quantity: 4},
		models.OrderItem{VariationID: vid(3), Quantity: 2},
	)

	err := m.Transition(context.Background(), o, StatusCancelled)
	require.Error(t, err)

	assert.Equal(t, []call{{"restore", 1, 1}, {"restore", 2, 4}}, be.calls)
	assert.Empty(t, be.statuses)
}

func TestTransition_CancelShippedRestoresInOrder(t *testing.T) {
	be := newFakeBackend()
	m := NewMachine(be, be)
	o := order(12, "Shipped",
		models.OrderItem{VariationID: vid(5), Quantity: 2},
		models.OrderItem{VariationID: vid(3), Quantity: 1},
	)

	require.NoError(t, m.Transition(context.Background(), o, "CANCELLED"))

	assert.Equal(t, []call{{"restore", 5, 2}, {"restore", 3, 1}}, be.calls)
	assert.Equal(t, StatusCancelled, be.statuses[12])
}

func TestTransition_NoSideEffects(t *testing.T) {
	be := newFakeBackend()
	m := NewMachine(be, be)

	require.NoError(t, m.Transition(context.Background(), order(1, "pending", models.OrderItem{Quantity: 1}), StatusCancelled))
	require.NoError(t, m.Transition(context.Background(), order(2, "shipped", models.OrderItem{Quantity: 1}), StatusCompleted))

	assert.Empty(t, be.calls)
	assert.Equal(t, StatusCancelled, be.statuses[1])
	assert.Equal(t, StatusCompleted, be.statuses[2])
}

func TestTransition_Rejections(t *testing.T) {
	be := newFakeBackend()
	m := NewMachine(be, be)
	ctx := context.Background()

	err := m.Transition(ctx, order(1, "completed"), StatusShipped)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = m.Transition(ctx, order(1, "pending"), "refunded")
	assert.ErrorIs(t, err, ErrUnknownStatus)

	err = m.Transition(ctx, order(2, "pending", models.OrderItem{VariationID: vid(1), Quantity: 3, LiveStock: 2}), StatusShipped)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	err = m.Transition(ctx, order(3, "pending",
		models.OrderItem{VariationID: vid(1), Quantity: 1, LiveStock: 9},
		models.OrderItem{ProductID: 8, Quantity: 1, LiveStock: 9},
	), StatusShipped)
	assert.ErrorIs(t, err, ErrMissingVariation)

	assert.Empty(t, be.calls)
	assert.Empty(t, be.statuses)
}

func TestTransition_StatusWriteFailure(t *testing.T) {
	be := newFakeBackend()
	be.writeErr = errors.New("db down")
	m := NewMachine(be, be)

	err := m.Transition(context.Background(), order(4, "pending", models.OrderItem{VariationID: vid(1), Quantity: 1, LiveStock: 1}), StatusShipped)

	require.Error(t, err)
	assert.Len(t, be.calls, 1)
	assert.False(t, m.Busy(4))
}

func TestTransition_SameOrderBusy(t *testing.T) {
	be := newFakeBackend()
	be.block = make(chan struct{})
	m := NewMachine(be, be)
	o := order(20, "pending", models.OrderItem{VariationID: vid(1), Quantity: 1, LiveStock: 1})

	done := make(chan error)
	go func() { done <- m.Transition(context.Background(), o, StatusShipped) }()

	require.Eventually(t, func() bool { return m.Busy(20) }, timeout, tick)

	err := m.Transition(context.Background(), o, StatusCancelled)
	assert.ErrorIs(t, err, ErrOrderBusy)

	close(be.block)
	require.NoError(t, <-done)
	assert.False(t, m.Busy(20))
}

func TestAdjustmentErrorMessage(t *testing.T) {
	err := &AdjustmentError{Effect: EffectDeduct, VariationID: 7, Applied: 2, Err: errors.New("boom")}
	assert.Equal(t, "deduct stock for variation 7 failed after 2 applied: boom", err.Error())
	assert.True(t, errors.Is(fmt.Errorf("wrap: %w", err), err.Err))
}
