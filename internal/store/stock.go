package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// mysqlSignalError is raised by SIGNAL SQLSTATE '45000' in the procedures.
const mysqlSignalError = 1644

// DeductStock calls deduct_stock, which refuses to take a variation below zero.
func (s *Store) DeductStock(ctx context.Context, variationID int64, quantity int) error {
	return s.callStock(ctx, "deduct_stock", variationID, quantity)
}

// RestoreStock calls restore_stock.
func (s *Store) RestoreStock(ctx context.Context, variationID int64, quantity int) error {
	return s.callStock(ctx, "restore_stock", variationID, quantity)
}

func (s *Store) callStock(ctx context.Context, proc string, variationID int64, quantity int) error {
	_, err := s.DB.ExecContext(ctx, "CALL "+proc+"(?, ?)", variationID, quantity)
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlSignalError {
		return fmt.Errorf("%s(%d, %d): %w: %s", proc, variationID, quantity, ErrStockRejected, myErr.Message)
	}
	return fmt.Errorf("%s(%d, %d): %w", proc, variationID, quantity, err)
}
