package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/delivery/events"
	"github.com/Pesokrava/storefront/internal/gateway/email"
	"github.com/Pesokrava/storefront/internal/gateway/sms"
	"github.com/Pesokrava/storefront/internal/pkg/cache"
	"github.com/Pesokrava/storefront/internal/pkg/database"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/storefront/internal/repository/cache"
	"github.com/Pesokrava/storefront/internal/repository/postgres"
	"github.com/Pesokrava/storefront/internal/usecase/notification"
	"github.com/Pesokrava/storefront/internal/usecase/smsqueue"
	"github.com/Pesokrava/storefront/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel).Named("notifier")
	appLogger.Info("Starting notifier service...")

	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	redisClient, err := cache.WaitForRedis(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	nc, js, err := events.Connect(cfg.NATS.URL)
	if err != nil {
		appLogger.Fatal("Failed to connect to NATS", err)
	}
	defer nc.Close()

	streams := events.NewStreamConfig(js, cfg.Notification, appLogger)
	if err := streams.EnsureStream(); err != nil {
		appLogger.Fatal("Failed to ensure notification stream", err)
	}
	if err := streams.EnsureConsumer(); err != nil {
		appLogger.Fatal("Failed to ensure notification consumer", err)
	}

	smsService := smsqueue.NewService(
		postgres.NewSMSRepository(db),
		sms.New(cfg.Twilio, appLogger),
		cacheRepo.NewRedisStore(redisClient),
		smsqueue.Options{
			MaxRetries:     cfg.Business.SMSMaxRetries,
			BatchSize:      cfg.Business.SMSBatchSize,
			StaleAfter:     cfg.Business.SMSStaleAfter,
			RetryBaseDelay: cfg.Business.SMSRetryBaseDelay,
			LockTTL:        cfg.Cache.SMSTickLockTTL,
		},
		nil,
		appLogger,
	)

	executor := notification.NewExecutor(
		postgres.NewNotificationTaskRepository(db),
		postgres.NewOrderRepository(db),
		postgres.NewUserRepository(db),
		smsService,
		email.New(cfg.SendGrid, appLogger),
		nil,
		appLogger,
	)

	notificationWorker := worker.NewNotificationWorker(executor, cfg.Notification.AckWait, appLogger)

	consumer, err := events.NewPullConsumer(js, cfg.Notification, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create notification consumer", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(ctx, notificationWorker.HandleDelivery)
	}()

	appLogger.Infof("Notifier listening on %s", cfg.Notification.Subject)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down notifier service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := notificationWorker.Shutdown(shutdownCtx); err != nil {
		appLogger.Warnf("Notification worker did not drain: %v", err)
	}
	cancel()
	wg.Wait()
	consumer.Close()

	appLogger.Info("Notifier service stopped")
}
