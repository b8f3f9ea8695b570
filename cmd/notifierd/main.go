package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"orderpipeline/config"
	"orderpipeline/internal/broker"
	"orderpipeline/internal/catalog"
	"orderpipeline/internal/notifier"
	"orderpipeline/internal/redisclient"
	"orderpipeline/internal/store"
	"orderpipeline/internal/util"
	"orderpipeline/internal/worker"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger("notification-service", cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting notification service")

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// The product cache is an optimization; without Redis the enricher just
	// hits the catalog RPC directly.
	var cache catalog.ProductCache
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password,
		cfg.Redis.DB, cfg.Catalog.CacheTTL)
	if err != nil {
		log.Printf("Redis unavailable, product cache disabled: %v", err)
	} else {
		defer redisClient.Close()
		cache = redisClient
		log.Println("Redis connected")
	}

	catalogClient := catalog.NewClient(cfg.Catalog.RPCAddr, cfg.Catalog.RPCTimeout)
	cachedCatalog := catalog.NewCachedCatalog(catalogClient, cache)

	mailer := notifier.NewMailer(cfg.SMTP)
	enricher := notifier.NewEnricher(db, cachedCatalog, mailer)

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrderEvents,
		cfg.Kafka.NotificationGroup, cfg.Kafka.ProbeTimeout, cfg.Kafka.RetryInterval)
	notificationWorker := worker.NewNotificationWorker(consumer, enricher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := notificationWorker.Start(ctx); err != nil {
			log.Printf("Notification worker stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel()
	log.Println("Notification service exited")
}
