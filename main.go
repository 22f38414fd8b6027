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

	"agromart/activity"
	"agromart/admin"
	"agromart/auth"
	"agromart/config"
	"agromart/db"
	"agromart/documents"
	"agromart/identity"
	"agromart/logging"
	"agromart/marketplace"
	"agromart/metrics"
	"agromart/middleware"
	"agromart/notify"
	"agromart/orders"
	"agromart/products"
	"agromart/ratelim"
	"agromart/receipt"
	"agromart/reviews"
	"agromart/routes"
	"agromart/supplier"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.IsDev())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Timeout)
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("creating indexes failed", zap.Error(err))
	}

	hub := notify.NewHub()
	go hub.Run()

	publisher := eventPublisher(ctx, cfg, hub, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTP(reg)
	orderMetrics := metrics.NewOrders(reg)

	tokens := identity.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)
	adminCreds := identity.AdminCredentials{Email: cfg.Admin.Email, PasswordHash: cfg.Admin.PasswordHash}

	trail := activity.NewService(activity.NewMongoStore(store.AuditLogs, store.Notifications), publisher, logger)
	stock := products.NewMongoRepository(store.Products)
	orderSvc := orders.NewService(orders.Repositories{
		Supplier:    orders.NewMongoSupplierRepository(store.Orders),
		Farmer:      orders.NewMongoFarmerRepository(store.FarmerOrders),
		Marketplace: orders.NewMongoMarketplaceRepository(store.MarketplaceOrders),
	}, stock, trail, orderMetrics, cfg.Supplier.AllowSentinel, logger)
	docSvc := documents.NewService(documents.NewMongoStore(store.Sellers, store.FarmerProfiles), trail, logger)
	reviewSvc := reviews.NewService(reviews.NewMongoStore(store.Reviews), trail, cfg.Supplier.AllowSentinel, logger)

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimit.LoginRate, cfg.RateLimit.LoginBurst)
	go rateLimiter.Janitor(ctx, time.Minute, 10*time.Minute)

	router := httprouter.New()
	routes.RoutesWrapper(router, routes.Handlers{
		Auth:        auth.NewHandler(tokens, adminCreds, auth.NewMongoSellerStore(store.Sellers), cfg.App.CookieSecure, logger),
		Admin:       admin.NewHandler(docSvc, orderSvc, stock, trail),
		Supplier:    supplier.NewHandler(orderSvc, stock, reviewSvc),
		Marketplace: marketplace.NewHandler(orderSvc, receipt.NewRenderer(cfg.ReceiptSecret()), logger),
		Stream:      notify.StreamHandler(hub, cfg.CORS.Origins, logger),
		Metrics:     metrics.Handler(reg),
	}, middleware.NewAuth(tokens, logger), rateLimiter)

	// CORS → security headers → metrics → logging → recover → request id → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.Origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", identity.SellerHeader, middleware.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(router)

	var handler http.Handler = corsHandler
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.Metrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recoverer(logger)(handler)
	handler = middleware.RequestID(logger)(handler)

	server := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		logger.Info("shutting down notification hub")
		hub.Stop()
	})

	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server stopped cleanly")
}
