package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/unimart/storefront/internal/domain/auth"
	"github.com/unimart/storefront/internal/domain/cart"
	"github.com/unimart/storefront/internal/domain/category"
	"github.com/unimart/storefront/internal/domain/content"
	"github.com/unimart/storefront/internal/domain/offer"
	"github.com/unimart/storefront/internal/domain/order"
	"github.com/unimart/storefront/internal/domain/product"
	"github.com/unimart/storefront/internal/handler"
	"github.com/unimart/storefront/internal/repository"
	"github.com/unimart/storefront/pkg/health"
	"github.com/unimart/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Redis holds carts.
	rdb, err := repository.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return errors.Wrap(err, "connect redis")
	}
	defer func() { _ = rdb.Close() }()

	healthSvc := health.New(lg.Named("health"))
	healthSvc.Register(health.Readiness, health.Check{
		Name:    "postgres",
		Timeout: 5 * time.Second,
		Func:    health.PingCheck(pool),
	})
	healthSvc.Register(health.Readiness, health.Check{
		Name:    "redis",
		Timeout: 2 * time.Second,
		Func: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})
	healthSvc.Register(health.Liveness, health.Check{
		Name:    "goroutines",
		Timeout: time.Second,
		Func:    health.GoroutineCountCheck(cfg.Health.GoroutineLimit),
	})
	healthSvc.Start(ctx, cfg.Health.Interval)

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)
	slideRepo := repository.NewSlideRepository(pool)
	linkRepo := repository.NewLinkRepository(pool)
	apikeyRepo := repository.NewAPIKeyRepository(pool)
	cartStore := repository.NewCartStore(rdb, cfg.Cart.TTL)

	// Domain services. The offer service is the single source of the active
	// offer snapshot for catalog, cart and order pricing.
	offerService := offer.NewService(offerRepo)
	services := handler.Services{
		Offers:     offerService,
		Products:   product.NewService(productRepo, categoryRepo, offerService),
		Categories: category.NewService(categoryRepo),
		Carts:      cart.NewService(cartStore, productRepo, offerService),
		Orders:     order.NewService(productRepo, offerService, orderRepo, m.TracerProvider()),
		Content:    content.NewService(feedbackRepo, slideRepo, linkRepo),
		Customers:  auth.NewCustomerService(apikeyRepo),
		Auth:       auth.NewAuthenticator(apikeyRepo, []byte(cfg.APIKeyPepper)),
	}

	h, err := handler.New(handler.Config{ImageBaseURL: cfg.ImageBaseURL}, services, m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create handler")
	}
	router := h.Router(healthSvc)
	routeFinder := httpmiddleware.MakeRouteFinder(router)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				Origins:     cfg.CORS.Origins,
				Headers:     []string{"Content-Type", "Authorization", handler.APIKeyHeader},
				Expose:      []string{httpmiddleware.RequestIDHeader},
				Credentials: cfg.CORS.AllowCredentials,
				MaxAge:      86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront-api", routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}
	healthSvc.SetReady(true)

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
