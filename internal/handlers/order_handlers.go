package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rjpc/storefront/internal/checkout"
	"github.com/rjpc/storefront/internal/fulfillment"
	"github.com/rjpc/storefront/internal/logger"
	"github.com/rjpc/storefront/internal/models"
	"github.com/rjpc/storefront/internal/orderfeed"
	"github.com/rjpc/storefront/internal/store"
	"go.uber.org/zap"
)

//
// --- Checkout (Public) ---
//

type checkoutInput struct {
	CartID  string `json:"cartId"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Checkout handles POST /v1/checkout. The cart id comes from the body or
// the X-Cart-ID header.
func (h *Handlers) Checkout(c *gin.Context) {
	// 1. --- Bind ---
	var input checkoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.CartID == "" {
		input.CartID = c.GetHeader("X-Cart-ID")
	}
	if _, err := uuid.Parse(input.CartID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart id"})
		return
	}

	// 2. --- Place order ---
	order, err := h.Placer.PlaceOrder(c, input.CartID, checkout.Customer{
		Name:    input.Name,
		Phone:   input.Phone,
		Address: input.Address,
	})
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
		default:
			serverError(c, "Failed to place order", err)
		}
		return
	}

	// 3. --- Success ---
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"orderId": order.ID,
		"total":   order.TotalAmount,
		"status":  order.Status,
	})
}

//
// --- Order Management (Admin) ---
//

type adminOrder struct {
	models.Order
	Actions    []fulfillment.Status `json:"actions"`
	CanShip    bool                 `json:"canShip"`
	Processing bool                 `json:"processing"`
}

// AdminListOrders handles GET /v1/admin/orders?status=&search=&refresh=true
func (h *Handlers) AdminListOrders(c *gin.Context) {
	if c.Query("refresh") == "true" {
		if err := h.Feed.Refresh(c); err != nil {
			serverError(c, "Failed to fetch orders", err)
			return
		}
	}

	orders := orderfeed.Filter(h.Feed.Snapshot(), c.Query("status"), c.Query("search"))
	out := make([]adminOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, adminOrder{
			Order:      o,
			Actions:    fulfillment.Actions(o),
			CanShip:    fulfillment.CanShip(o),
			Processing: h.Machine.Busy(o.ID),
		})
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

type statusInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus handles PATCH /v1/admin/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	// 1. --- Validate input ---
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := fulfillment.ParseStatus(input.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + input.Status})
		return
	}

	// 2. --- Load the order as the store sees it now ---
	order, err := h.Orders.GetOrder(c, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		serverError(c, "Failed to fetch order", err)
		return
	}

	// 3. --- Transition, then resync whatever happened ---
	err = h.Machine.Transition(c, *order, target)
	if refreshErr := h.Feed.Refresh(c); refreshErr != nil {
		logger.Warn(c, "Order list refresh failed after status update", zap.Error(refreshErr))
	}

	if err != nil {
		var adjErr *fulfillment.AdjustmentError
		switch {
		case errors.Is(err, fulfillment.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, fulfillment.ErrOrderBusy):
			c.JSON(http.StatusConflict, gin.H{"error": "This order is already being processed"})
		case errors.Is(err, fulfillment.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": "Not enough stock to ship this order"})
		case errors.Is(err, fulfillment.ErrMissingVariation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.As(err, &adjErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Inventory sync error: " + adjErr.Err.Error()})
		default:
			serverError(c, "Failed to update order status", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "orderId": orderID, "status": target})
}
