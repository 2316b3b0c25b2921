package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"htmx-tictactoe/config"
	"htmx-tictactoe/events"
	"htmx-tictactoe/game"
	"htmx-tictactoe/handlers"
)

const shutdownTimeout = 5 * time.Second

func main() {
	conf, err := config.Load()
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}

	logger := conf.Log.NewLogger()

	if err := run(logger, conf); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newStore(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeStore()

	gin.SetMode(conf.GinMode)

	hub := events.NewHub(logger)
	h := handlers.New(logger, store, hub, conf.SSEKeepAlive)

	router, err := handlers.NewRouter(logger, h)
	if err != nil {
		return fmt.Errorf("could not build router: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + conf.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		// event streams end when the process is asked to stop
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "store", conf.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErrCh <- err
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Received signal, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not shut down HTTP server: %w", err)
	}
	return nil
}

func newStore(ctx context.Context, log *slog.Logger, conf *config.Config) (game.Store, func(), error) {
	switch conf.Store.Backend {
	case config.StoreRedis:
		client, err := game.ConnectRedis(ctx, conf.Redis.GetRedisAddr(), conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}
		return game.NewRedisStore(client, conf.Store.SessionTTL), closeFn, nil
	default:
		return game.NewMemoryStore(conf.Store.SessionTTL), func() {}, nil
	}
}
