package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rjpc/storefront/internal/cart"
	"github.com/rjpc/storefront/internal/models"
)

//
// --- Cart Handlers (Public, keyed by cart id) ---
//

type cartResponse struct {
	*cart.Cart
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

func renderCart(c *gin.Context, status int, crt *cart.Cart) {
	c.Header("X-Cart-ID", crt.ID)
	c.JSON(status, cartResponse{Cart: crt, Total: crt.Total(), Count: crt.Count()})
}

// cartID validates the :id path parameter as a uuid.
func cartID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart id"})
		return "", false
	}
	return id.String(), true
}

// CreateCart handles POST /v1/cart
func (h *Handlers) CreateCart(c *gin.Context) {
	crt := cart.New(uuid.NewString())
	if err := h.Carts.Save(c, crt); err != nil {
		serverError(c, "Failed to create cart", err)
		return
	}
	renderCart(c, http.StatusCreated, crt)
}

// GetCart handles GET /v1/cart/:id. Unknown or expired ids yield an empty cart.
func (h *Handlers) GetCart(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	crt, err := h.Carts.GetOrNew(c, id)
	if err != nil {
		serverError(c, "Failed to load cart", err)
		return
	}
	renderCart(c, http.StatusOK, crt)
}

type addCartItemInput struct {
	ProductID   int64 `json:"productId" binding:"required"`
	VariationID int64 `json:"variationId" binding:"required"`
	Quantity    int   `json:"quantity"`
}

// AddCartItem handles POST /v1/cart/:id/items. Price, label and stock come
// from the catalog at this moment, not from the client.
func (h *Handlers) AddCartItem(c *gin.Context) {
	// 1. --- Validate input ---
	id, ok := cartID(c)
	if !ok {
		return
	}
	var input addCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	// 2. --- Look up the variation ---
	product, err := h.Products.GetProduct(c, input.ProductID)
	if err != nil {
		if notFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		serverError(c, "Failed to fetch product", err)
		return
	}
	var v *models.Variation
	for i := range product.Variations {
		if product.Variations[i].ID == input.VariationID {
			v = &product.Variations[i]
			break
		}
	}
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Variation not found"})
		return
	}

	// 3. --- Merge into cart ---
	crt, err := h.Carts.GetOrNew(c, id)
	if err != nil {
		serverError(c, "Failed to load cart", err)
		return
	}
	item := cart.Item{
		ProductID:      product.ID,
		VariationID:    v.ID,
		Name:           product.Name,
		VariationLabel: v.Label,
		ImageURL:       product.ImageURL,
		Price:          v.Price,
		MaxStock:       v.Stock,
	}
	if err := crt.Add(item, input.Quantity); err != nil {
		switch {
		case errors.Is(err, cart.ErrOutOfStock):
			c.JSON(http.StatusConflict, gin.H{"error": "This variation is out of stock"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	// 4. --- Save ---
	if err := h.Carts.Save(c, crt); err != nil {
		serverError(c, "Failed to save cart", err)
		return
	}
	renderCart(c, http.StatusOK, crt)
}

type updateCartItemInput struct {
	ProductID   int64 `json:"productId" binding:"required"`
	VariationID int64 `json:"variationId" binding:"required"`
	Delta       *int  `json:"delta"`
	Quantity    *int  `json:"quantity"`
}

// UpdateCartItem handles PATCH /v1/cart/:id/items with either a delta
// (the +/- buttons) or an absolute quantity.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	var input updateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (input.Delta == nil) == (input.Quantity == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide exactly one of delta or quantity"})
		return
	}

	crt, ok := h.loadCart(c, id)
	if !ok {
		return
	}

	var err error
	if input.Delta != nil {
		err = crt.Update(input.ProductID, input.VariationID, *input.Delta)
	} else {
		err = crt.SetQuantity(input.ProductID, input.VariationID, *input.Quantity)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}

	if err := h.Carts.Save(c, crt); err != nil {
		serverError(c, "Failed to save cart", err)
		return
	}
	renderCart(c, http.StatusOK, crt)
}

type removeCartItemInput struct {
	ProductID   int64 `json:"productId" binding:"required"`
	VariationID int64 `json:"variationId" binding:"required"`
}

// RemoveCartItem handles DELETE /v1/cart/:id/items
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	var input removeCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	crt, ok := h.loadCart(c, id)
	if !ok {
		return
	}
	if err := crt.Remove(input.ProductID, input.VariationID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}

	if err := h.Carts.Save(c, crt); err != nil {
		serverError(c, "Failed to save cart", err)
		return
	}
	renderCart(c, http.StatusOK, crt)
}

// ClearCart handles DELETE /v1/cart/:id
func (h *Handlers) ClearCart(c *gin.Context) {
	id, ok := cartID(c)
	if !ok {
		return
	}
	if err := h.Carts.Delete(c, id); err != nil {
		serverError(c, "Failed to clear cart", err)
		return
	}
	renderCart(c, http.StatusOK, cart.New(id))
}

func (h *Handlers) loadCart(c *gin.Context, id string) (*cart.Cart, bool) {
	crt, err := h.Carts.Get(c, id)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
			return nil, false
		}
		serverError(c, "Failed to load cart", err)
		return nil, false
	}
	return crt, true
}
