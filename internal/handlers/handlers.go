package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rjpc/storefront/internal/auth"
	"github.com/rjpc/storefront/internal/cart"
	"github.com/rjpc/storefront/internal/checkout"
	"github.com/rjpc/storefront/internal/fulfillment"
	"github.com/rjpc/storefront/internal/logger"
	"github.com/rjpc/storefront/internal/models"
	"github.com/rjpc/storefront/internal/store"
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) (int64, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

type OrderReader interface {
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
}

type CartRepository interface {
	Get(ctx context.Context, cartID string) (*cart.Cart, error)
	GetOrNew(ctx context.Context, cartID string) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
	Delete(ctx context.Context, cartID string) error
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, cartID string, customer checkout.Customer) (*models.Order, error)
}

type Transitioner interface {
	Transition(ctx context.Context, order models.Order, target fulfillment.Status) error
	Busy(orderID int64) bool
}

type OrderFeed interface {
	Refresh(ctx context.Context) error
	Snapshot() []models.Order
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Products ProductStore
	Orders   OrderReader
	Carts    CartRepository
	Placer   OrderPlacer
	Machine  Transitioner
	Feed     OrderFeed

	Issuer        *auth.Issuer
	AdminPassword models.Password

	UploadDir string
	BaseURL   string

	Now func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// parseID reads a positive integer path parameter, replying 400 when it is not one.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// serverError logs err with the request id and hides it from the client.
func serverError(c *gin.Context, msg string, err error) {
	logger.Error(c, msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func notFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
