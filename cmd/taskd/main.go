package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"taskd/internal/api"
	"taskd/internal/config"
	"taskd/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	tasks, err := newTaskStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to initialize task store: %v", err)
	}

	server := api.New(tasks, store.NewItemStore(), logger, api.Options{
		ServiceName:    cfg.Server.ServiceName,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		APIKeys:        cfg.Server.APIKeys,
		RatePerSecond:  cfg.Server.RateLimit.PerSecond,
		RateBurst:      cfg.Server.RateLimit.Burst,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"backend": cfg.Storage.Backend,
		}).Info("server is listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("could not listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("server is shutting down")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}

	logger.Info("server stopped")
}

// newTaskStore builds the task repository named by the storage backend
// setting.
func newTaskStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (store.TaskRepository, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "file":
		return store.NewFileStore(cfg.Storage.File.Path, logger)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Storage.Redis.Addr,
			DB:   cfg.Storage.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("could not connect to redis (%s): %w", cfg.Storage.Redis.Addr, err)
		}
		return store.NewRedisStore(client), nil
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
