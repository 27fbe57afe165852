// Package orderfeed keeps the back office's in-memory order list in sync
// with the store by refetching everything on each change notification.
package orderfeed

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rjpc/storefront/internal/logger"
	"github.com/rjpc/storefront/internal/models"
	"github.com/rjpc/storefront/internal/realtime"
	"go.uber.org/zap"
)

// OrderLister fetches all orders with their items expanded, newest first.
type OrderLister interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// SubscribeFunc blocks delivering change notifications to fn until ctx ends.
type SubscribeFunc func(ctx context.Context, fn func(context.Context, realtime.Change)) error

// Feed is the full-resync order snapshot. Concurrent refreshes are not
// serialized: whichever finishes last overwrites the snapshot.
type Feed struct {
	store OrderLister

	mu        sync.RWMutex
	orders    []models.Order
	refreshed time.Time
}

func New(store OrderLister) *Feed {
	return &Feed{store: store, orders: []models.Order{}}
}

// Refresh refetches every order and replaces the snapshot. On error the
// previous snapshot stays visible.
func (f *Feed) Refresh(ctx context.Context) error {
	orders, err := f.store.ListOrders(ctx)
	if err != nil {
		logger.Error(ctx, "Error fetching orders", err)
		return err
	}
	if orders == nil {
		orders = []models.Order{}
	}

	f.mu.Lock()
	f.orders = orders
	f.refreshed = time.Now()
	f.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current order list.
func (f *Feed) Snapshot() []models.Order {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.Order, len(f.orders))
	copy(out, f.orders)
	return out
}

func (f *Feed) RefreshedAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.refreshed
}

// Run refreshes once per notification until ctx is cancelled.
func (f *Feed) Run(ctx context.Context, subscribe SubscribeFunc) error {
	return subscribe(ctx, func(ctx context.Context, ch realtime.Change) {
		logger.Info(ctx, "Order change received, resyncing",
			zap.String("table", ch.Table),
			zap.String("event", ch.Event),
			zap.Int64("id", ch.ID),
		)
		_ = f.Refresh(ctx)
	})
}

// Supervise keeps Run alive until ctx is cancelled. A failed or dropped
// subscription is retried with a doubling backoff capped at maxBackoff, and
// every reconnect resyncs first since changes may have been missed.
func (f *Feed) Supervise(ctx context.Context, subscribe SubscribeFunc, minBackoff, maxBackoff time.Duration) {
	backoff := minBackoff
	for {
		err := f.Run(ctx, subscribe)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn(ctx, "Order subscription failed, retrying",
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
		} else {
			backoff = minBackoff
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if err != nil {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}

		if err := f.Refresh(ctx); err != nil {
			logger.Warn(ctx, "Order resync after reconnect failed", zap.Error(err))
		}
	}
}

// Filter applies the admin list's status tab and search box. Status "all"
// or empty matches any; search matches customer name or order id substrings.
func Filter(orders []models.Order, status, search string) []models.Order {
	status = strings.ToLower(strings.TrimSpace(status))
	search = strings.ToLower(strings.TrimSpace(search))

	out := []models.Order{}
	for _, o := range orders {
		if status != "" && status != "all" && strings.ToLower(strings.TrimSpace(string(o.Status))) != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.CustomerName), search) &&
			!strings.Contains(strconv.FormatInt(o.ID, 10), search) {
			continue
		}
		out = append(out, o)
	}
	return out
}
