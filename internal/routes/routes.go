package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rjpc/storefront/internal/handlers"
	"github.com/rjpc/storefront/internal/logger"
	"github.com/rjpc/storefront/internal/middleware"
)

type Options struct {
	CORSOrigin         string
	UploadDir          string
	CheckoutRatePerMin int
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())

	// --- APPLY THE CORS GUARD ---
	router.Use(middleware.CORSMiddleware(opts.CORSOrigin))

	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	if opts.CheckoutRatePerMin <= 0 {
		opts.CheckoutRatePerMin = 30
	}
	checkoutLimiter := middleware.PerMinute(opts.CheckoutRatePerMin)

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Storefront ---
		v1.GET("/products", h.GetProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/brands", h.GetBrands)
		v1.GET("/categories", h.GetCategories)

		// --- Cart ---
		v1.POST("/cart", h.CreateCart)
		v1.GET("/cart/:id", h.GetCart)
		v1.DELETE("/cart/:id", h.ClearCart)
		v1.POST("/cart/:id/items", h.AddCartItem)
		v1.PATCH("/cart/:id/items", h.UpdateCartItem)
		v1.DELETE("/cart/:id/items", h.RemoveCartItem)

		// --- Checkout ---
		v1.POST("/checkout", checkoutLimiter.Middleware(), h.Checkout)

		// --- Admin Login (Public) ---
		v1.POST("/admin/login", h.AdminLogin)

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminMiddleware(h.Issuer))
		{
			admin.GET("/products", h.AdminListProducts)
			admin.GET("/products/:id", h.AdminGetProduct)
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/variations/matrix", h.GenerateMatrix)
			admin.POST("/upload", h.UploadImage)

			admin.GET("/orders", h.AdminListOrders)
			admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
			admin.GET("/dashboard-stats", h.GetDashboardStats)
		}
	}

	return router
}
