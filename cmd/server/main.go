package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"camrent-be/internal/config"
	"camrent-be/internal/db"
	"camrent-be/internal/httpx"
	"camrent-be/internal/logger"
	"camrent-be/internal/metrics"
	"camrent-be/internal/notify"
	"camrent-be/internal/order"
	"camrent-be/internal/product"
	"camrent-be/internal/user"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database := db.InitDB(cfg)
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier order.Notifier
	var producer *notify.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = notify.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic, 256)
		go producer.Start(ctx)
		notifier = notify.NewKafkaNotifier(producer)
		log.Info("kafka notifier enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.OrderEventsTopic))
	} else {
		notifier = &notify.LogNotifier{}
		log.Info("no kafka brokers configured, completion events will be logged only")
	}

	stats := &metrics.OrderStats{}

	userRepo := user.NewRepository(database)
	userSvc := user.NewService(userRepo)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, notifier, stats)

	router := httpx.NewRouter(httpx.Handlers{
		Auth:    httpx.NewAuthHandler(userSvc),
		Product: httpx.NewProductHandler(productSvc),
		Order:   httpx.NewOrderHandler(orderSvc),
	})

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.AppPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	// Stop the producer flush loop after in-flight requests drained so
	// late completion events still make it out.
	cancel()
	if producer != nil {
		producer.WaitClosed()
	}

	log.Info("server exited")
}
