package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rjpc/storefront/internal/catalog"
	"github.com/rjpc/storefront/internal/models"
	"github.com/rjpc/storefront/internal/variation"
)

//
// --- Storefront (Public) ---
//

// GetProducts handles GET /v1/products?category=&brand=&search=
func (h *Handlers) GetProducts(c *gin.Context) {
	var filter catalog.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := h.Products.ListProducts(c)
	if err != nil {
		serverError(c, "Failed to fetch products", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": catalog.Apply(products, filter)})
}

// GetProduct handles GET /v1/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.Products.GetProduct(c, id)
	if err != nil {
		if notFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		serverError(c, "Failed to fetch product", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetBrands handles GET /v1/brands
func (h *Handlers) GetBrands(c *gin.Context) {
	products, err := h.Products.ListProducts(c)
	if err != nil {
		serverError(c, "Failed to fetch brands", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": catalog.Brands(products)})
}

// GetCategories handles GET /v1/categories
func (h *Handlers) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": catalog.Categories})
}

//
// --- Inventory (Admin) ---
//

type inventoryRow struct {
	models.Product
	TotalStock int `json:"totalStock"`
}

// AdminListProducts handles GET /v1/admin/products?search=
func (h *Handlers) AdminListProducts(c *gin.Context) {
	products, err := h.Products.ListProducts(c)
	if err != nil {
		serverError(c, "Failed to fetch products", err)
		return
	}

	matched := catalog.AdminSearch(products, c.Query("search"))
	out := make([]inventoryRow, 0, len(matched))
	for _, p := range matched {
		out = append(out, inventoryRow{Product: p, TotalStock: catalog.TotalStock(p)})
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

// AdminGetProduct handles GET /v1/admin/products/:id. It also returns the
// tiers rebuilt from the saved labels so the editor can regenerate.
func (h *Handlers) AdminGetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := h.Products.GetProduct(c, id)
	if err != nil {
		if notFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		serverError(c, "Failed to fetch product", err)
		return
	}

	rows := variation.FromVariations(product.Variations)
	tier1, tier2 := variation.TiersFromRows(rows, "Model", "Size")
	c.JSON(http.StatusOK, gin.H{
		"product":    product,
		"variations": rows,
		"tiers":      []variation.Tier{tier1, tier2},
	})
}

// productInput is the body for create and update.
type productInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Variations  []variation.Row `json:"variations"`
}

func (in productInput) toProduct(id int64) *models.Product {
	price := in.Price
	if price < 0 {
		price = 0
	}
	return &models.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       price,
		ImageURL:    in.ImageURL,
		Category:    strings.TrimSpace(in.Category),
		Brand:       strings.TrimSpace(in.Brand),
		Variations:  variation.ToVariations(id, in.Variations),
	}
}

// CreateProduct handles POST /v1/admin/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	// 1. --- Bind & validate ---
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Persist ---
	product := input.toProduct(0)
	id, err := h.Products.CreateProduct(c, product)
	if err != nil {
		serverError(c, "Failed to create product", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "productId": id, "product": product})
}

// UpdateProduct handles PUT /v1/admin/products/:id. Variations keep their
// ids so a save updates rows instead of duplicating them.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := input.toProduct(id)
	if err := h.Products.UpdateProduct(c, product); err != nil {
		if notFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		serverError(c, "Failed to update product", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

// DeleteProduct handles DELETE /v1/admin/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Products.DeleteProduct(c, id); err != nil {
		if notFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		serverError(c, "Failed to delete product", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

type matrixRequest struct {
	Tier1     variation.Tier  `json:"tier1"`
	Tier2     variation.Tier  `json:"tier2"`
	BasePrice float64         `json:"basePrice"`
	Previous  []variation.Row `json:"previous"`
}

// cleanTier re-applies option rules to client-supplied tiers.
func cleanTier(t variation.Tier) variation.Tier {
	out := variation.Tier{Name: t.Name, Options: []string{}}
	for _, o := range t.Options {
		out.AddOption(o)
	}
	return out
}

// GenerateMatrix handles POST /v1/admin/variations/matrix. It only previews
// rows; nothing is saved until the product is.
func (h *Handlers) GenerateMatrix(c *gin.Context) {
	var req matrixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BasePrice < 0 {
		req.BasePrice = 0
	}

	rows := variation.Generate(cleanTier(req.Tier1), cleanTier(req.Tier2), req.BasePrice, req.Previous)
	c.JSON(http.StatusOK, gin.H{"variations": rows})
}
