package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rjpc/storefront/internal/auth"
	"github.com/rjpc/storefront/internal/cart"
	"github.com/rjpc/storefront/internal/checkout"
	"github.com/rjpc/storefront/internal/config"
	"github.com/rjpc/storefront/internal/database"
	"github.com/rjpc/storefront/internal/fulfillment"
	"github.com/rjpc/storefront/internal/handlers"
	"github.com/rjpc/storefront/internal/logger"
	"github.com/rjpc/storefront/internal/models"
	"github.com/rjpc/storefront/internal/orderfeed"
	"github.com/rjpc/storefront/internal/realtime"
	"github.com/rjpc/storefront/internal/routes"
	"github.com/rjpc/storefront/internal/store"
	"go.uber.org/zap"
)

func main() {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, envLoaded, err := config.Load()
	if err != nil {
		// The logger is not up yet.
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()
	if !envLoaded {
		logger.Log.Warn("Could not find or load .env file. Relying on system environment variables.")
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Database Connection ---
	db, err := database.OpenDB(ctx, cfg.DBDSN)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 2. --- Redis (carts + change notifications) ---
	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer rdb.Close()

	// 3. --- Services ---
	st := store.New(db, realtime.NewPublisher(rdb, cfg.OrdersChannel))
	carts := cart.NewRepository(rdb, cfg.CartTTL)
	feed := orderfeed.New(st)

	app := &handlers.Handlers{
		Products:      st,
		Orders:        st,
		Carts:         carts,
		Placer:        checkout.NewService(carts, st),
		Machine:       fulfillment.NewMachine(st, st),
		Feed:          feed,
		Issuer:        auth.NewIssuer(cfg.JWTSecret),
		AdminPassword: models.Password{Hash: cfg.AdminPasswordHash},
		UploadDir:     cfg.UploadDir,
		BaseURL:       cfg.BaseURL,
	}
	if cfg.AdminPasswordHash == "" {
		logger.Log.Warn("ADMIN_PASSWORD_HASH is not set; admin login is disabled")
	}

	// 4. --- Background Workers ---
	// Initial order snapshot, then a full resync on every change notification.
	if err := feed.Refresh(ctx); err != nil {
		logger.Log.Warn("Initial order refresh failed", zap.Error(err))
	}
	go func() {
		subCtx := logger.WithContext(ctx, "orders-subscriber")
		feed.Supervise(subCtx, func(ctx context.Context, fn func(context.Context, realtime.Change)) error {
			return realtime.Subscribe(ctx, rdb, cfg.OrdersChannel, fn)
		}, time.Second, 30*time.Second)
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Options{
		CORSOrigin:         cfg.CORSOrigin,
		UploadDir:          cfg.UploadDir,
		CheckoutRatePerMin: cfg.CheckoutRatePerMin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// --- Start Server ---
	go func() {
		logger.Log.Info("Starting storefront API server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
}
