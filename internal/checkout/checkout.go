// Package checkout turns a cart into a pending order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rjpc/storefront/internal/cart"
	"github.com/rjpc/storefront/internal/logger"
	"github.com/rjpc/storefront/internal/models"
	"go.uber.org/zap"
)

var ErrEmptyCart = errors.New("cart is empty")

// Customer is the shipping form. Every field is required.
type Customer struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

var validate = validator.New()

// ValidationError lists the form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (c Customer) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return &ValidationError{Fields: fields}
		}
		return err
	}
	return nil
}

// Build snapshots the cart into a pending order. The total and each item's
// unit price are fixed here and never recomputed from the catalog.
func Build(c *cart.Cart, customer Customer) (models.Order, error) {
	if c == nil || c.Empty() {
		return models.Order{}, ErrEmptyCart
	}
	if err := customer.Validate(); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		CustomerName:    strings.TrimSpace(customer.Name),
		CustomerPhone:   strings.TrimSpace(customer.Phone),
		ShippingAddress: strings.TrimSpace(customer.Address),
		TotalAmount:     c.Total(),
		Status:          models.OrderStatusPending,
		Items:           make([]models.OrderItem, 0, len(c.Items)),
	}
	for _, it := range c.Items {
		variationID := it.VariationID
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   it.ProductID,
			VariationID: &variationID,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
		})
	}
	return order, nil
}

// CartStore is the subset of the cart repository checkout needs.
type CartStore interface {
	Get(ctx context.Context, cartID string) (*cart.Cart, error)
	Delete(ctx context.Context, cartID string) error
}

// OrderCreator persists an order with its items and returns the new id.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order *models.Order) (int64, error)
}

type Service struct {
	carts  CartStore
	orders OrderCreator
}

func NewService(carts CartStore, orders OrderCreator) *Service {
	return &Service{carts: carts, orders: orders}
}

// PlaceOrder loads the cart, writes the order and clears the cart. The cart
// is left untouched if the order write fails, so the shopper can retry.
func (s *Service) PlaceOrder(ctx context.Context, cartID string, customer Customer) (*models.Order, error) {
	// 1. --- Load cart ---
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	// 2. --- Snapshot ---
	order, err := Build(c, customer)
	if err != nil {
		return nil, err
	}

	// 3. --- Persist ---
	id, err := s.orders.CreateOrder(ctx, &order)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order.ID = id

	// 4. --- Clear cart ---
	if err := s.carts.Delete(ctx, cartID); err != nil {
		// The order exists; a stale cart is only a nuisance.
		logger.Warn(ctx, "Failed to clear cart after checkout", zap.String("cart_id", cartID), zap.Error(err))
	}

	logger.Info(ctx, "Order placed",
		zap.Int64("order_id", order.ID),
		zap.Float64("total", order.TotalAmount),
		zap.Int("items", len(order.Items)),
	)
	return &order, nil
}
