package models

import (
	"errors"
	"strings"
	"time"
)

// OrderStatus is the lifecycle state of an order. Persisted values are
// always the lowercase constants below.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var ErrUnknownStatus = errors.New("unknown order status")

// ParseOrderStatus normalizes casing and whitespace, so "Shipped" and
// " shipped " are the same status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case OrderStatusPending, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return st, nil
	default:
		return "", ErrUnknownStatus
	}
}

// Order is the model for the 'orders' table
type Order struct {
	ID              int64       `json:"id" db:"id"`
	CustomerName    string      `json:"customerName" db:"customer_name"`
	CustomerPhone   string      `json:"customerPhone" db:"customer_phone"`
	ShippingAddress string      `json:"shippingAddress" db:"shipping_address"`
	TotalAmount     float64     `json:"totalAmount" db:"total_amount"` // Snapshot at checkout
	Status          OrderStatus `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"createdAt" db:"created_at"`

	Items []OrderItem `json:"items" db:"-"`
}

// OrderItem is the model for the 'order_items' table
type OrderItem struct {
	ID          int64   `json:"id" db:"id"`
	OrderID     int64   `json:"orderId" db:"order_id"`
	ProductID   int64   `json:"productId" db:"product_id"`
	VariationID *int64  `json:"variationId" db:"variation_id"`
	Quantity    int     `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unitPrice" db:"unit_price"` // Price at the time of purchase

	// Expanded from products / product_variations when listing
	ProductName    string `json:"productName,omitempty" db:"-"`
	VariationLabel string `json:"variationLabel,omitempty" db:"-"`
	LiveStock      int    `json:"liveStock" db:"-"`
}

// LineTotal is the snapshotted price times quantity.
func (i OrderItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}
