// Package store is the MySQL-backed data layer: product and order queries,
// writes, and the stock adjustment procedures.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rjpc/storefront/internal/logger"
	"github.com/rjpc/storefront/internal/realtime"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrStockRejected = errors.New("stock adjustment rejected")
)

// Notifier receives a Change after every committed order write.
type Notifier interface {
	Publish(ctx context.Context, ch realtime.Change) error
}

type Store struct {
	DB       *sql.DB
	notifier Notifier
}

// New returns a Store. notifier may be nil.
func New(db *sql.DB, notifier Notifier) *Store {
	return &Store{DB: db, notifier: notifier}
}

func (s *Store) notify(ctx context.Context, table, event string, id int64) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, realtime.Change{Table: table, Event: event, ID: id}); err != nil {
		// The row is committed; listeners will catch up on the next change.
		logger.Warn(ctx, "Failed to publish change", zap.String("table", table), zap.Int64("id", id), zap.Error(err))
	}
}
