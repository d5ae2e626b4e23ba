package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/shopkartlabs/shopkart-backend/api/routes"
	"github.com/shopkartlabs/shopkart-backend/internal/addresses"
	"github.com/shopkartlabs/shopkart-backend/internal/cart"
	"github.com/shopkartlabs/shopkart-backend/internal/checkout"
	"github.com/shopkartlabs/shopkart-backend/internal/inventory"
	"github.com/shopkartlabs/shopkart-backend/internal/locations"
	"github.com/shopkartlabs/shopkart-backend/internal/orders"
	"github.com/shopkartlabs/shopkart-backend/internal/payments"
	"github.com/shopkartlabs/shopkart-backend/internal/products"
	"github.com/shopkartlabs/shopkart-backend/internal/returns"
	"github.com/shopkartlabs/shopkart-backend/internal/users"
	"github.com/shopkartlabs/shopkart-backend/internal/wishlist"
	"github.com/shopkartlabs/shopkart-backend/pkg/config"
	"github.com/shopkartlabs/shopkart-backend/pkg/db"
	"github.com/shopkartlabs/shopkart-backend/pkg/logger"
	"github.com/shopkartlabs/shopkart-backend/pkg/metrics"
	"github.com/shopkartlabs/shopkart-backend/pkg/migrate"
	"github.com/shopkartlabs/shopkart-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	svcs, err := buildServices(cfg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, httpMetrics, svcs),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "server stopped")
}

func buildServices(cfg *config.Config, dbClient *db.Client) (routes.Services, error) {
	conn := dbClient.DB()

	productsSvc, err := products.NewService(products.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	inventorySvc, err := inventory.NewService(dbClient, inventory.NewRepository(conn), cfg.Inventory.LowStockThreshold)
	if err != nil {
		return routes.Services{}, err
	}
	locationsSvc, err := locations.NewService(locations.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	addressesSvc, err := addresses.NewService(dbClient, addresses.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}
	cartSvc, err := cart.NewService(dbClient, cart.NewRepository(conn), productsSvc)
	if err != nil {
		return routes.Services{}, err
	}
	wishlistSvc, err := wishlist.NewService(wishlist.NewRepository(conn), productsSvc)
	if err != nil {
		return routes.Services{}, err
	}
	usersSvc, err := users.NewService(users.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	ordersRepo := orders.NewRepository(conn)
	ordersSvc, err := orders.NewService(dbClient, ordersRepo, inventorySvc, cartSvc)
	if err != nil {
		return routes.Services{}, err
	}
	checkoutSvc, err := checkout.NewService(
		dbClient,
		ordersRepo,
		addressesSvc,
		locationsSvc,
		products.NewRepository(conn),
		inventorySvc,
		cartSvc,
	)
	if err != nil {
		return routes.Services{}, err
	}
	paymentsSvc, err := payments.NewService(dbClient, ordersRepo, payments.NewRepository(conn), inventorySvc, cartSvc)
	if err != nil {
		return routes.Services{}, err
	}
	returnsSvc, err := returns.NewService(dbClient, returns.NewRepository(conn), ordersRepo, inventorySvc, returns.Policy{
		RestockOnApproval: cfg.Returns.RestockOnApproval,
		RequestWindow:     cfg.Returns.RequestWindow,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Products:  productsSvc,
		Cart:      cartSvc,
		Addresses: addressesSvc,
		Locations: locationsSvc,
		Checkout:  checkoutSvc,
		Orders:    ordersSvc,
		Payments:  paymentsSvc,
		Returns:   returnsSvc,
		Wishlist:  wishlistSvc,
		Inventory: inventorySvc,
		Users:     usersSvc,
	}, nil
}
