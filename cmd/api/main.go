package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shoe-storefront/internal/config"
	"shoe-storefront/internal/database"
	"shoe-storefront/internal/events"
	"shoe-storefront/internal/logger"
	"shoe-storefront/internal/notify"
	"shoe-storefront/internal/server"
	"shoe-storefront/internal/storage"
	"shoe-storefront/migrations"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// In-flight requests get 30 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database health check", zap.Any("health", db.Health(ctx)))

	if err := database.RunMigrations(db.DB().DB, migrations.FS, ".", log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// the cache and rate limiter degrade gracefully without Redis
		log.Warn("Redis is unavailable", zap.String("addr", cfg.RedisAddr()), zap.Error(err))
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info("Publishing order events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	emailCfg := notify.Config{
		Endpoint:             cfg.Email.Endpoint,
		ServiceID:            cfg.Email.ServiceID,
		TemplateOrderCreated: cfg.Email.TemplateOrderCreated,
		TemplateStatusUpdate: cfg.Email.TemplateStatusUpdate,
		PublicKey:            cfg.Email.PublicKey,
		PrivateKey:           cfg.Email.PrivateKey,
		AdminAddress:         cfg.Email.AdminAddress,
	}
	var notifier notify.Notifier = notify.Nop{}
	if emailCfg.Enabled() {
		notifier = notify.NewEmailJS(emailCfg, nil)
	} else {
		log.Warn("Order emails are disabled, EMAIL_SERVICE_ID or EMAIL_PUBLIC_KEY is not set")
	}

	srv := server.NewServer(cfg, log, server.Dependencies{
		DB:        db,
		Redis:     redisClient,
		Storage:   storage.NewLocal(cfg.Storage.Dir, cfg.Storage.PublicURL, cfg.Storage.MaxUploadMB<<20),
		Notifier:  notifier,
		Publisher: publisher,
	})

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}
