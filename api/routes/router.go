package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopkartlabs/shopkart-backend/api/controllers"
	"github.com/shopkartlabs/shopkart-backend/api/middleware"
	addresssvc "github.com/shopkartlabs/shopkart-backend/internal/addresses"
	cartsvc "github.com/shopkartlabs/shopkart-backend/internal/cart"
	checkoutsvc "github.com/shopkartlabs/shopkart-backend/internal/checkout"
	inventorysvc "github.com/shopkartlabs/shopkart-backend/internal/inventory"
	locationsvc "github.com/shopkartlabs/shopkart-backend/internal/locations"
	ordersvc "github.com/shopkartlabs/shopkart-backend/internal/orders"
	paymentsvc "github.com/shopkartlabs/shopkart-backend/internal/payments"
	productsvc "github.com/shopkartlabs/shopkart-backend/internal/products"
	returnsvc "github.com/shopkartlabs/shopkart-backend/internal/returns"
	usersvc "github.com/shopkartlabs/shopkart-backend/internal/users"
	wishlistsvc "github.com/shopkartlabs/shopkart-backend/internal/wishlist"
	"github.com/shopkartlabs/shopkart-backend/pkg/config"
	"github.com/shopkartlabs/shopkart-backend/pkg/db"
	"github.com/shopkartlabs/shopkart-backend/pkg/enums"
	"github.com/shopkartlabs/shopkart-backend/pkg/logger"
	"github.com/shopkartlabs/shopkart-backend/pkg/metrics"
	"github.com/shopkartlabs/shopkart-backend/pkg/redis"
)

// Services bundles everything the router wires into controllers.
type Services struct {
	Products  productsvc.Service
	Cart      cartsvc.Service
	Addresses addresssvc.Service
	Locations locationsvc.Service
	Checkout  checkoutsvc.Service
	Orders    ordersvc.Service
	Payments  paymentsvc.Service
	Returns   returnsvc.Service
	Wishlist  wishlistsvc.Service
	Inventory inventorysvc.Service
	Users     usersvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	// A nil *redis.Client must not leak into the interfaces below; a typed
	// nil would dodge the nil checks downstream.
	var idemStore redis.IdempotencyStore
	var redisP redis.Pinger
	if redisClient != nil {
		idemStore = redisClient
		redisP = redisClient
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Catalog browsing stays public.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(svcs.Products, logg))
		r.Get("/categories", controllers.ProductCategories(svcs.Products, logg))
		r.Get("/{productRef}", controllers.ProductDetail(svcs.Products, logg))
	})
	r.Get("/api/v1/serviceability/{pincode}", controllers.ServiceabilityCheck(svcs.Locations, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/my-orders", controllers.MyOrders(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
			r.Post("/{orderId}/reorder", controllers.OrderReorder(svcs.Orders, logg))
			r.Post("/{orderId}/payment/confirm", controllers.PaymentConfirm(svcs.Payments, logg))
			r.Post("/{orderId}/payment/fail", controllers.PaymentFail(svcs.Payments, logg))
			r.Get("/{orderId}/payment/transactions", controllers.PaymentTransactions(svcs.Payments, svcs.Orders, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartView(svcs.Cart, logg))
			r.Post("/", controllers.CartAdd(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
			r.Post("/merge", controllers.CartMerge(svcs.Cart, logg))
			r.Put("/{cartItemId}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/{cartItemId}", controllers.CartRemoveItem(svcs.Cart, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(svcs.Addresses, logg))
			r.Post("/", controllers.AddressCreate(svcs.Addresses, logg))
			r.Put("/{addressId}", controllers.AddressUpdate(svcs.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(svcs.Addresses, logg))
			r.Put("/{addressId}/default", controllers.AddressSetDefault(svcs.Addresses, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(svcs.Wishlist, logg))
			r.Post("/", controllers.WishlistAdd(svcs.Wishlist, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(svcs.Wishlist, logg))
		})

		r.Route("/returns", func(r chi.Router) {
			r.Post("/", controllers.ReturnCreate(svcs.Returns, logg))
			r.Get("/", controllers.ReturnList(svcs.Returns, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileView(svcs.Users, logg))
			r.Put("/", controllers.ProfileUpdate(svcs.Users, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(svcs.Orders, logg))
			r.Put("/{orderId}/status", controllers.AdminOrderUpdateStatus(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.AdminOrderCancel(svcs.Orders, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(svcs.Inventory, logg))
			r.Post("/", controllers.InventoryUpsert(svcs.Inventory, logg))
			r.Get("/low-stock", controllers.InventoryLowStock(svcs.Inventory, logg))
			r.Get("/out-of-stock", controllers.InventoryOutOfStock(svcs.Inventory, logg))
			r.Put("/{inventoryId}/adjust", controllers.InventoryAdjust(svcs.Inventory, logg))
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", controllers.LocationList(svcs.Locations, logg))
			r.Post("/", controllers.LocationCreate(svcs.Locations, logg))
			r.Get("/{locationId}", controllers.LocationDetail(svcs.Locations, logg))
			r.Put("/{locationId}", controllers.LocationUpdate(svcs.Locations, logg))
		})

		r.Route("/returns", func(r chi.Router) {
			r.Get("/", controllers.AdminReturnList(svcs.Returns, logg))
			r.Put("/{returnId}/status", controllers.AdminReturnResolve(svcs.Returns, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(svcs.Products, logg))
			r.Post("/", controllers.AdminProductCreate(svcs.Products, logg))
			r.Get("/{productId}", controllers.AdminProductDetail(svcs.Products, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(svcs.Products, logg))
			r.Put("/{productId}/active", controllers.AdminProductSetActive(svcs.Products, logg))
		})
	})

	return r
}
