package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rjpc/storefront/internal/models"
	"github.com/rjpc/storefront/internal/realtime"
)

const orderColumns = `id, customer_name, customer_phone, shipping_address, total_amount, status, created_at`

// Items come back with the product name, variation label and live stock
// so the back office can run the ship pre-check.
const orderItemsQuery = `
	SELECT oi.id, oi.order_id, oi.product_id, oi.variation_id, oi.quantity, oi.unit_price,
	       COALESCE(p.name, ''), COALESCE(v.label, ''), COALESCE(v.stock_count, 0)
	FROM order_items oi
	LEFT JOIN products p ON p.id = oi.product_id
	LEFT JOIN product_variations v ON v.id = oi.variation_id`

func scanOrder(row interface{ Scan(...any) error }, o *models.Order) error {
	var status string
	if err := row.Scan(&o.ID, &o.CustomerName, &o.CustomerPhone, &o.ShippingAddress, &o.TotalAmount, &status, &o.CreatedAt); err != nil {
		return err
	}
	// Older rows may carry "Shipped"; normalize here so nothing downstream compares casings.
	if st, err := models.ParseOrderStatus(status); err == nil {
		o.Status = st
	} else {
		o.Status = models.OrderStatus(status)
	}
	o.Items = []models.OrderItem{}
	return nil
}

func scanOrderItem(rows *sql.Rows) (models.OrderItem, error) {
	var it models.OrderItem
	var variationID sql.NullInt64
	err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &variationID, &it.Quantity, &it.UnitPrice,
		&it.ProductName, &it.VariationLabel, &it.LiveStock)
	if variationID.Valid {
		v := variationID.Int64
		it.VariationID = &v
	}
	return it, err
}

// ListOrders returns every order, newest first, items expanded.
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	index := map[int64]int{}
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	irows, err := s.DB.QueryContext(ctx, orderItemsQuery+` ORDER BY oi.order_id ASC, oi.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer irows.Close()

	for irows.Next() {
		it, err := scanOrderItem(irows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders, irows.Err()
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	if err := scanOrder(s.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id), &o); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query order %d: %w", id, err)
	}

	rows, err := s.DB.QueryContext(ctx, orderItemsQuery+` WHERE oi.order_id = ? ORDER BY oi.id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

// CreateOrder writes the order and its item snapshots in one transaction.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) (int64, error) {
	// 1. --- Begin Transaction ---
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // Safety net

	// 2. --- Insert the main order record ---
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (customer_name, customer_phone, shipping_address, total_amount, status)
		VALUES (?, ?, ?, ?, ?)`,
		o.CustomerName, o.CustomerPhone, o.ShippingAddress, o.TotalAmount, string(o.Status))
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	// 3. --- Snapshot each item ---
	for i := range o.Items {
		it := &o.Items[i]
		var variationID any
		if it.VariationID != nil {
			variationID = *it.VariationID
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, variation_id, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			orderID, it.ProductID, variationID, it.Quantity, it.UnitPrice)
		if err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}
		if it.ID, err = res.LastInsertId(); err != nil {
			return 0, err
		}
		it.OrderID = orderID
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	o.ID = orderID

	s.notify(ctx, "orders", realtime.EventInsert, orderID)
	return orderID, nil
}

// UpdateOrderStatus persists a new status, always in its lowercase form.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	st, err := models.ParseOrderStatus(string(status))
	if err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(st), orderID)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 when the value is unchanged, so confirm the row exists.
		var id int64
		if err := s.DB.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = ?`, orderID).Scan(&id); err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return err
		}
	}

	s.notify(ctx, "orders", realtime.EventUpdate, orderID)
	return nil
}
