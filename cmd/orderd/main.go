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

	"orderpipeline/config"
	"orderpipeline/internal/api"
	"orderpipeline/internal/broker"
	"orderpipeline/internal/catalog"
	"orderpipeline/internal/service"
	"orderpipeline/internal/store"
	"orderpipeline/internal/util"
	"orderpipeline/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger("order-service", cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting order service")

	tp, err := util.InitTracer("order-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrderEvents,
		cfg.Kafka.ProbeTimeout, cfg.Kafka.RetryInterval)
	producer.Start()
	defer producer.Close()
	log.Println("Kafka producer initialized")

	catalogClient := catalog.NewClient(cfg.Catalog.RPCAddr, cfg.Catalog.RPCTimeout)
	orderService := service.NewOrderService(db, db, catalogClient, producer)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	relayConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrderEvents,
		cfg.Kafka.RelayGroup, cfg.Kafka.ProbeTimeout, cfg.Kafka.RetryInterval)
	relayWorker := worker.NewRelayWorker(relayConsumer)
	go func() {
		if err := relayWorker.Start(workerCtx); err != nil {
			log.Printf("Relay worker stopped: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(orderService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()

	log.Println("Server exited")
}
