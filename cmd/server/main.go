package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/listgate/internal/api"
	"github.com/mcoot/listgate/internal/factory"
	redisstorage "github.com/mcoot/listgate/internal/storage/redis"
)

func main() {
	// A missing .env is fine; an explicit ENV_FILE must exist
	envErr := godotenv.Load()
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "load %s: %v\n", path, err)
			os.Exit(1)
		}
		envErr = nil
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LISTGATE_LOG_LEVEL")),
	}))
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file loaded", slog.String("error", envErr.Error()))
	}

	if err := run(logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(logger *slog.Logger) error {
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("LISTGATE_STORAGE"),
		DataDir:     getEnvOrDefault("LISTGATE_DATA_DIR", "data"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("LISTGATE_REDIS_URL")
		if redisURL == "" {
			return errors.New("LISTGATE_REDIS_URL required when LISTGATE_STORAGE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		if key := os.Getenv("LISTGATE_REDIS_KEY"); key != "" {
			redisCfg.Key = key
		}
		cfg.RedisConfig = &redisCfg
	}

	tokenHash := os.Getenv("LISTGATE_TOKEN_HASH")
	if tokenHash == "" {
		logger.Warn("LISTGATE_TOKEN_HASH not set; the API is unauthenticated")
	}

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = getEnvOrDefault("LISTGATE_HOST", serverConfig.Host)
	if port := os.Getenv("LISTGATE_PORT"); port != "" {
		var err error
		serverConfig.Port, err = strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid LISTGATE_PORT %q: %w", port, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	app.Start()

	server := api.NewServer(app.Router(tokenHash), serverConfig, logger)
	// Event streams end only when their session does
	server.RegisterOnShutdown(func() { app.Sessions.CloseAll() })

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", slog.String("addr", server.Addr()))
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
		defer cancel()
		return errors.Join(server.Shutdown(shutdownCtx), app.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
