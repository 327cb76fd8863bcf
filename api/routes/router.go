package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmoralesf/vitalstack-backend/api/controllers"
	"github.com/rmoralesf/vitalstack-backend/api/middleware"
	"github.com/rmoralesf/vitalstack-backend/internal/address"
	"github.com/rmoralesf/vitalstack-backend/internal/auth"
	"github.com/rmoralesf/vitalstack-backend/internal/banners"
	"github.com/rmoralesf/vitalstack-backend/internal/bundles"
	"github.com/rmoralesf/vitalstack-backend/internal/cart"
	"github.com/rmoralesf/vitalstack-backend/internal/catalog"
	"github.com/rmoralesf/vitalstack-backend/internal/notifications"
	"github.com/rmoralesf/vitalstack-backend/internal/orders"
	"github.com/rmoralesf/vitalstack-backend/internal/reviews"
	"github.com/rmoralesf/vitalstack-backend/internal/users"
	"github.com/rmoralesf/vitalstack-backend/internal/wishlist"
	"github.com/rmoralesf/vitalstack-backend/pkg/auth/session"
	"github.com/rmoralesf/vitalstack-backend/pkg/config"
	"github.com/rmoralesf/vitalstack-backend/pkg/enums"
	"github.com/rmoralesf/vitalstack-backend/pkg/logger"
	"github.com/rmoralesf/vitalstack-backend/pkg/metrics"
	"github.com/rmoralesf/vitalstack-backend/pkg/redis"
)

// NewRouter assembles the full HTTP surface: public storefront routes,
// authenticated customer routes and the admin console routes.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database controllers.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	promRegistry *prometheus.Registry,
	authService auth.Service,
	usersService users.Service,
	catalogService catalog.Service,
	ordersService orders.Service,
	receiptSigner controllers.ReceiptSigner,
	addressService address.Service,
	cartService cart.Service,
	wishlistService wishlist.Service,
	notificationsService notifications.Service,
	bannersService banners.Service,
	bundlesService bundles.Service,
	reviewsService reviews.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		httpMetrics.Middleware(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	var cache controllers.Pinger
	if redisClient != nil {
		cache = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(database, cache, logg))
	})
	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.Register(authService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(authService, logg))
			r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).Post("/logout", controllers.Logout(authService, logg))
		})

		r.Get("/products", controllers.ListProducts(catalogService, logg, false))
		r.Get("/products/{productId}", controllers.GetProduct(catalogService, logg, false))
		r.Get("/products/{productId}/reviews", controllers.ListProductReviews(reviewsService, logg))
		r.Get("/banners", controllers.ListBanners(bannersService, logg, true))
		r.Get("/bundles", controllers.ListBundles(bundlesService, logg, true))
		r.Get("/bundles/{bundleId}", controllers.GetBundle(bundlesService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

			r.Get("/me", controllers.GetProfile(usersService, logg))
			r.Patch("/me", controllers.UpdateProfile(usersService, logg))

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.ListAddresses(addressService, logg))
				r.Post("/", controllers.CreateAddress(addressService, logg))
				r.Patch("/{addressId}", controllers.UpdateAddress(addressService, logg))
				r.Delete("/{addressId}", controllers.DeleteAddress(addressService, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(cartService, logg))
				r.Delete("/", controllers.ClearCart(cartService, logg))
				r.Post("/items", controllers.AddCartItem(cartService, logg))
				r.Patch("/items/{itemId}", controllers.UpdateCartItem(cartService, logg))
				r.Delete("/items/{itemId}", controllers.RemoveCartItem(cartService, logg))
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", controllers.ListWishlist(wishlistService, logg))
				r.Post("/", controllers.AddWishlistItem(wishlistService, logg))
				r.Delete("/{productId}", controllers.RemoveWishlistItem(wishlistService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListMyOrders(ordersService, logg))
				r.Post("/", controllers.PlaceOrder(ordersService, cfg.Uploads, logg))
				r.Get("/{orderId}", controllers.GetMyOrder(ordersService, logg))
				r.Post("/{orderId}/cancel", controllers.CancelMyOrder(ordersService, logg))
			})

			r.Post("/products/{productId}/reviews", controllers.SubmitReview(reviewsService, logg))
			r.Delete("/reviews/{reviewId}", controllers.DeleteMyReview(reviewsService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg, true))
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Get("/{productId}", controllers.GetProduct(catalogService, logg, true))
			r.Patch("/{productId}", controllers.UpdateProduct(catalogService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(catalogService, logg))
			r.Post("/{productId}/variants", controllers.AddVariant(catalogService, logg))
			r.Patch("/{productId}/variants/{variantId}", controllers.UpdateVariant(catalogService, logg))
			r.Delete("/{productId}/variants/{variantId}", controllers.DeleteVariant(catalogService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersService, logg))
			r.Get("/{orderId}", controllers.AdminGetOrder(ordersService, receiptSigner, logg))
			r.Patch("/{orderId}", controllers.AdminUpdateOrder(ordersService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Delete("/read", controllers.DeleteReadNotifications(notificationsService, logg))
			r.Delete("/{notificationId}", controllers.DeleteNotification(notificationsService, logg))
		})

		r.Route("/banners", func(r chi.Router) {
			r.Get("/", controllers.ListBanners(bannersService, logg, false))
			r.Post("/", controllers.CreateBanner(bannersService, cfg.Uploads, logg))
			r.Patch("/{bannerId}", controllers.UpdateBanner(bannersService, cfg.Uploads, logg))
			r.Delete("/{bannerId}", controllers.DeleteBanner(bannersService, logg))
		})

		r.Route("/bundles", func(r chi.Router) {
			r.Get("/", controllers.ListBundles(bundlesService, logg, false))
			r.Post("/", controllers.CreateBundle(bundlesService, logg))
			r.Get("/{bundleId}", controllers.GetBundle(bundlesService, logg))
			r.Patch("/{bundleId}", controllers.UpdateBundle(bundlesService, logg))
			r.Post("/{bundleId}/deactivate", controllers.DeactivateBundle(bundlesService, logg))
		})

		r.Delete("/reviews/{reviewId}", controllers.AdminDeleteReview(reviewsService, logg))
	})

	return r
}
