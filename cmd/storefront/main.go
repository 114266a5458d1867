package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/joao-fontenele/digitalshop/internal/address"
	"github.com/joao-fontenele/digitalshop/internal/assistant"
	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/cart"
	"github.com/joao-fontenele/digitalshop/internal/catalog"
	"github.com/joao-fontenele/digitalshop/internal/checkout"
	"github.com/joao-fontenele/digitalshop/internal/config"
	"github.com/joao-fontenele/digitalshop/internal/invoice"
	"github.com/joao-fontenele/digitalshop/internal/messaging"
	"github.com/joao-fontenele/digitalshop/internal/orders"
	"github.com/joao-fontenele/digitalshop/internal/pricing"
	"github.com/joao-fontenele/digitalshop/internal/reviews"
	"github.com/joao-fontenele/digitalshop/internal/session"
	"github.com/joao-fontenele/digitalshop/internal/telemetry"
	"github.com/joao-fontenele/digitalshop/internal/users"
)

const (
	serviceName    = "storefront"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateStorefront(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter provider", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(15 * time.Second)); err != nil {
		logger.Error("failed to start runtime metrics", "error", err)
		os.Exit(1)
	}

	shopMetrics, err := telemetry.NewShopMetrics()
	if err != nil {
		logger.Error("failed to create shop metrics", "error", err)
		os.Exit(1)
	}

	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL, cfg.DBSchema)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var store session.Store
	if cfg.RedisURL != "" {
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = client.Close() }()
		store = session.NewRedisStore(client, cfg.SessionTTL)
	} else {
		logger.Warn("REDIS_URL not set, sessions are kept in memory")
		store = session.NewMemoryStore()
	}

	var publisher orders.EventPublisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer := messaging.NewProducer(brokers, cfg.OrderEventsTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events are not published")
	}

	outbound := &http.Client{
		Timeout:   30 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	productRepo := catalog.NewProductRepository(db)
	userRepo := users.NewUserRepository(db)
	reviewRepo := reviews.NewReviewRepository(db)
	orderRepo := orders.NewOrderRepository(db)

	coupons := pricing.DefaultTable()
	carts := cart.NewService(store, productRepo, cart.NewReducer(coupons), logger)
	placer := checkout.NewService(carts, orderRepo, publisher, shopMetrics, logger)

	invoiceOpts := invoice.DefaultOptions()
	invoiceOpts.ShopName = cfg.ShopName
	invoiceOpts.OrderURL = cfg.PublicURL + "/orders/%s"

	router := newRouter(handlers{
		auth:      auth.NewAuthenticator(cfg.JWTSecret, logger),
		health:    db,
		metrics:   metricsHandler,
		catalog:   catalog.NewHandler(productRepo, logger),
		reviews:   reviews.NewHandler(reviewRepo, productRepo, logger),
		cart:      cart.NewHandler(carts, coupons, shopMetrics, logger),
		address:   address.NewHandler(logger),
		session:   session.NewHandler(store, userRepo, carts, logger),
		checkout:  checkout.NewHandler(placer, logger),
		orders:    orders.NewHandler(orderRepo, publisher, invoiceOpts, logger),
		stats:     orders.NewStatsHandler(orderRepo, productRepo, userRepo, logger),
		users:     users.NewHandler(userRepo, logger),
		assistant: assistant.NewHandler(
			assistant.NewClient(cfg.AssistantEndpoint, cfg.AssistantAPIKey, "", outbound),
			cfg.AssistantRatePerMinute, shopMetrics, logger,
		),
	}, cfg.AllowedOrigins(), logger)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(router, serviceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
	}

	go func() {
		logger.Info("starting storefront service", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
