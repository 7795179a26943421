package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"arcade/internal/aggregate"
	"arcade/pkg/config"
	"arcade/pkg/logger"
	"arcade/pkg/profile"
	"arcade/pkg/records"
	"arcade/pkg/server"
)

func main() {
	// 1. Load env file if present, then config
	godotenv.Load()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize logger
	l, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer l.Sync()

	l.Info("aggregator initializing", zap.String("env", cfg.Environment))

	// 3. Record store client
	store := records.NewHTTPClient(records.HTTPConfig{
		BaseURL: cfg.Store.BaseURL,
		APIKey:  cfg.Store.APIKey,
		BaseID:  cfg.Store.BaseID,
		Timeout: cfg.Store.RequestTimeout,
	}, l)

	// 4. Profile directory and cache
	directory := profile.NewHTTPDirectory(cfg.Directory.BaseURL, cfg.Directory.RequestTimeout)

	var cache profile.Cache
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			l.Error("failed to connect to redis", err)
			os.Exit(1)
		}
		cache = profile.NewRedisCache(client, cfg.Cache.TTL)
	default:
		cache = profile.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.SweepThreshold, nil)
	}

	enricher := profile.NewEnricher(directory, cache, cfg.Enricher.WorkerCount, l)

	// 5. Aggregation service
	svc := aggregate.NewService(store, aggregate.Tables{
		Games:    cfg.Store.GamesTable,
		Posts:    cfg.Store.PostsTable,
		Plays:    cfg.Store.PlaysTable,
		Feedback: cfg.Store.FeedbackTable,
		Users:    cfg.Store.UsersTable,
	}, cfg.Store.PageSize, enricher, l)

	// 6. HTTP server
	srv := server.New(cfg.Server.Addr, svc, l)
	go func() {
		if err := srv.Start(); err != nil {
			l.Error("http server failed", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info("aggregator running", zap.String("addr", cfg.Server.Addr))
	<-ctx.Done()

	l.Info("aggregator stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("shutdown failed", err)
	}
}
