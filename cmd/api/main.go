package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rmoralesf/vitalstack-backend/api/routes"
	"github.com/rmoralesf/vitalstack-backend/internal/address"
	"github.com/rmoralesf/vitalstack-backend/internal/auth"
	"github.com/rmoralesf/vitalstack-backend/internal/banners"
	"github.com/rmoralesf/vitalstack-backend/internal/bundles"
	"github.com/rmoralesf/vitalstack-backend/internal/cart"
	"github.com/rmoralesf/vitalstack-backend/internal/catalog"
	"github.com/rmoralesf/vitalstack-backend/internal/notifications"
	"github.com/rmoralesf/vitalstack-backend/internal/orders"
	"github.com/rmoralesf/vitalstack-backend/internal/receipts"
	"github.com/rmoralesf/vitalstack-backend/internal/reviews"
	"github.com/rmoralesf/vitalstack-backend/internal/users"
	"github.com/rmoralesf/vitalstack-backend/internal/wishlist"
	"github.com/rmoralesf/vitalstack-backend/pkg/auth/session"
	"github.com/rmoralesf/vitalstack-backend/pkg/config"
	"github.com/rmoralesf/vitalstack-backend/pkg/db"
	"github.com/rmoralesf/vitalstack-backend/pkg/logger"
	"github.com/rmoralesf/vitalstack-backend/pkg/metrics"
	"github.com/rmoralesf/vitalstack-backend/pkg/migrate"
	"github.com/rmoralesf/vitalstack-backend/pkg/redis"
	"github.com/rmoralesf/vitalstack-backend/pkg/storage/gcs"
)

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
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

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
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	notificationsRepo := notifications.NewRepository(gormDB)

	authService, err := auth.NewService(usersRepo, sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		exitOnWiring(logg, "auth", err)
	}
	usersService, err := users.NewService(usersRepo)
	if err != nil {
		exitOnWiring(logg, "users", err)
	}
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		exitOnWiring(logg, "catalog", err)
	}
	addressService, err := address.NewService(address.NewRepository(gormDB), dbClient)
	if err != nil {
		exitOnWiring(logg, "address", err)
	}
	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		exitOnWiring(logg, "notifications", err)
	}
	receiptStore, err := receipts.NewStore(gcsClient, cfg.GCS, cfg.Uploads)
	if err != nil {
		exitOnWiring(logg, "receipts", err)
	}
	ordersService, err := orders.NewService(
		orders.NewRepository(gormDB),
		dbClient,
		addressService,
		receiptStore,
		notificationsService,
		orders.NewStockAdjuster(),
	)
	if err != nil {
		exitOnWiring(logg, "orders", err)
	}
	cartService, err := cart.NewService(cart.NewRepository(gormDB), catalogRepo, dbClient)
	if err != nil {
		exitOnWiring(logg, "cart", err)
	}
	wishlistService, err := wishlist.NewService(wishlist.NewRepository(gormDB), catalogRepo)
	if err != nil {
		exitOnWiring(logg, "wishlist", err)
	}
	bannersService, err := banners.NewService(banners.NewRepository(gormDB), gcsClient, cfg.GCS, cfg.Uploads, logg)
	if err != nil {
		exitOnWiring(logg, "banners", err)
	}
	bundlesService, err := bundles.NewService(bundles.NewRepository(gormDB), dbClient)
	if err != nil {
		exitOnWiring(logg, "bundles", err)
	}
	reviewsService, err := reviews.NewService(reviews.NewRepository(gormDB), dbClient, notificationsService)
	if err != nil {
		exitOnWiring(logg, "reviews", err)
	}

	promRegistry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)

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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			httpMetrics,
			promRegistry,
			authService,
			usersService,
			catalogService,
			ordersService,
			receiptStore,
			addressService,
			cartService,
			wishlistService,
			notificationsService,
			bannersService,
			bundlesService,
			reviewsService,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func exitOnWiring(logg *logger.Logger, component string, err error) {
	logg.Error(context.Background(), "failed to wire "+component+" service", err)
	os.Exit(1)
}
