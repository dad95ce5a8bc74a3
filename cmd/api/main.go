package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/storefront/internal/delivery/http"
	"github.com/Pesokrava/storefront/internal/delivery/http/handler"
	"github.com/Pesokrava/storefront/internal/gateway/payment"
	"github.com/Pesokrava/storefront/internal/gateway/sms"
	"github.com/Pesokrava/storefront/internal/pkg/cache"
	"github.com/Pesokrava/storefront/internal/pkg/database"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	"github.com/Pesokrava/storefront/internal/pkg/metrics"
	"github.com/Pesokrava/storefront/internal/pkg/mongodb"
	cacheRepo "github.com/Pesokrava/storefront/internal/repository/cache"
	mongoRepo "github.com/Pesokrava/storefront/internal/repository/mongo"
	"github.com/Pesokrava/storefront/internal/repository/postgres"
	"github.com/Pesokrava/storefront/internal/usecase/analytics"
	"github.com/Pesokrava/storefront/internal/usecase/cart"
	"github.com/Pesokrava/storefront/internal/usecase/checkout"
	"github.com/Pesokrava/storefront/internal/usecase/notification"
	"github.com/Pesokrava/storefront/internal/usecase/order"
	"github.com/Pesokrava/storefront/internal/usecase/product"
	"github.com/Pesokrava/storefront/internal/usecase/refund"
	"github.com/Pesokrava/storefront/internal/usecase/review"
	"github.com/Pesokrava/storefront/internal/usecase/smsqueue"
	"github.com/Pesokrava/storefront/internal/usecase/user"

	_ "github.com/Pesokrava/storefront/docs"
)

// @title Storefront API
// @version 1.0
// @description Storefront backend: catalog, carts, checkout, orders, refunds, reviews and SMS notifications.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/Pesokrava/storefront
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name Products
// @tag.description Catalog endpoints

// @tag.name Cart
// @tag.description Shopping cart endpoints

// @tag.name Checkout
// @tag.description Order placement and payment confirmation

// @tag.name Orders
// @tag.description Order history and fulfilment

// @tag.name Refunds
// @tag.description Refund requests and decisions

// @tag.name Reviews
// @tag.description Review and moderation endpoints

// @tag.name Admin
// @tag.description Back-office endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel).Named("api")
	appLogger.Info("Starting Storefront API...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	if cfg.Server.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := database.RunMigrations(ctx, db); err != nil {
			cancel()
			appLogger.Fatal("Failed to run migrations", err)
		}
		cancel()
		appLogger.Info("Database migrations applied")
	}

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	appLogger.Info("Connecting to MongoDB...")
	mongoClient, err := mongodb.WaitForMongo(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()
	mongoDB := mongoClient.Database(cfg.Mongo.Database)
	appLogger.Info("Connected to MongoDB successfully")

	appLogger.Info("Connecting to NATS...")
	nc, js, err := events.Connect(cfg.NATS.URL)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	publisher := events.NewPublisher(nc, js, appLogger)
	defer publisher.Close()

	if err := events.NewStreamConfig(js, cfg.Notification, appLogger).EnsureStream(); err != nil {
		appLogger.Fatal("Failed to ensure notification stream", err)
	}

	var stream analytics.EventStream
	if cfg.Kafka.Enabled() {
		analyticsStream := events.NewAnalyticsStream(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer analyticsStream.Close()
		stream = analyticsStream
		appLogger.Infof("Streaming product events to Kafka topic %s", cfg.Kafka.Topic)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	gateway, err := payment.NewStripeGateway(cfg.Stripe)
	if err != nil {
		appLogger.Fatal("Failed to configure payment gateway", err)
	}

	// Repositories
	productRepo := postgres.NewProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	refundRepo := postgres.NewRefundRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	smsRepo := postgres.NewSMSRepository(db)
	userRepo := postgres.NewUserRepository(db)
	taskRepo := postgres.NewNotificationTaskRepository(db)

	cartRepo := mongoRepo.NewCartRepository(mongoDB)
	eventRepo := mongoRepo.NewProductEventRepository(mongoDB)
	searchIndex := mongoRepo.NewSearchIndex(mongoDB)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"carts":          cartRepo.EnsureIndexes,
		"product_events": eventRepo.EnsureIndexes,
		"search":         searchIndex.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			cancelIndex()
			appLogger.Fatal(fmt.Sprintf("Failed to ensure %s indexes", name), err)
		}
	}
	cancelIndex()

	keyStore := cacheRepo.NewRedisStore(redisClient)
	redisCache := cacheRepo.NewRedisCache(redisClient, cfg.Cache.ReviewsListTTL)
	webhookGuard, err := cacheRepo.NewIdempotencyGuard(keyStore, cfg.Cache.WebhookDedupTTL, "stripe")
	if err != nil {
		appLogger.Fatal("Failed to create webhook guard", err)
	}

	// Services
	analyticsService := analytics.NewService(
		eventRepo, productRepo, orderRepo, refundRepo, smsRepo,
		stream, cfg.Business.LowStockThreshold, appLogger,
	)
	dispatcher := notification.NewDispatcher(taskRepo, publisher, cfg.Notification.Subject, appMetrics, appLogger)

	productService := product.NewService(productRepo, searchIndex, analyticsService, appLogger)
	cartService := cart.NewService(cartRepo, productRepo, analyticsService, appLogger)
	checkoutService := checkout.NewService(
		orderRepo, cartService, gateway, analyticsService, webhookGuard,
		appMetrics, cfg.Stripe.Currency, appLogger,
	)
	orderService := order.NewService(orderRepo, dispatcher, cfg.Business.ShippingLeadTime, appLogger)
	refundService := refund.NewService(refundRepo, orderRepo, gateway, dispatcher, appMetrics, cfg.Business.RefundWindow, appLogger)
	reviewService := review.NewService(reviewRepo, orderRepo, redisCache, cfg.Business.ReviewReportThreshold, appLogger)
	smsService := smsqueue.NewService(smsRepo, sms.New(cfg.Twilio, appLogger), keyStore, smsqueue.Options{
		MaxRetries:     cfg.Business.SMSMaxRetries,
		BatchSize:      cfg.Business.SMSBatchSize,
		StaleAfter:     cfg.Business.SMSStaleAfter,
		RetryBaseDelay: cfg.Business.SMSRetryBaseDelay,
		LockTTL:        cfg.Cache.SMSTickLockTTL,
	}, appMetrics, appLogger)
	userService := user.NewService(userRepo, appLogger)

	// Handlers
	handlers := httpDelivery.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.Check{
			"postgres": db.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
			"mongo": func(ctx context.Context) error {
				return mongoClient.Ping(ctx, nil)
			},
			"nats": func(context.Context) error {
				if !nc.IsConnected() {
					return fmt.Errorf("nats status %s", nc.Status())
				}
				return nil
			},
		}, appLogger),
		Products:  handler.NewProductHandler(productService, appLogger),
		Reviews:   handler.NewReviewHandler(reviewService, appLogger),
		Cart:      handler.NewCartHandler(cartService, appLogger),
		Checkout:  handler.NewCheckoutHandler(checkoutService, cfg.Auth, appLogger),
		Webhooks:  handler.NewWebhookHandler(gateway, checkoutService, appLogger),
		Orders:    handler.NewOrderHandler(orderService, appLogger),
		Refunds:   handler.NewRefundHandler(refundService, appLogger),
		SMS:       handler.NewSMSHandler(smsService, appLogger),
		Analytics: handler.NewAnalyticsHandler(analyticsService, appLogger),
		Users:     handler.NewUserHandler(userService, appLogger),
	}

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	router := httpDelivery.NewRouter(handlers, appMetrics, metricsHandler, cfg, appLogger)
	httpHandler := router.Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
		return
	}

	appLogger.Info("Server stopped gracefully")
}
