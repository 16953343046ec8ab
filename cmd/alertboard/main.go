package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsglass/alertboard/internal/client"
	"github.com/opsglass/alertboard/internal/config"
	"github.com/opsglass/alertboard/internal/handlers"
	"github.com/opsglass/alertboard/internal/logging"
	boardnats "github.com/opsglass/alertboard/internal/nats"
	"github.com/opsglass/alertboard/internal/ratelimit"
	"github.com/opsglass/alertboard/internal/retry"
	"github.com/opsglass/alertboard/internal/server"
	"github.com/opsglass/alertboard/internal/service"
	"github.com/opsglass/alertboard/internal/stream"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "override listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("alertboard"))
	logging.SetDefault(logger)

	slog.Info("Starting alertboard service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	if *addr != "" {
		listenAddr = *addr
	}

	osClient, err := client.NewOpenSearchClient(cfg.OpenSearch)
	if err != nil {
		slog.Error("Failed to create OpenSearch client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Connected to OpenSearch", slog.String("url", cfg.OpenSearch.URL))

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Disabled {
		limiter = &ratelimit.NoOpLimiter{}
		slog.Warn("Rate limiting disabled")
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window())
	}
	defer limiter.Close()

	broadcaster := stream.NewBroadcaster(cfg.Stream.Buffer)
	svc := service.New(version, osClient, retry.New(cfg.Retry.Attempts, cfg.Retry.Delay()), broadcaster)
	h := handlers.New(svc, cfg.Stream.RetryHintMS)

	// Optional broker-side alert source; the service works without it.
	var subscriber *boardnats.Subscriber
	if cfg.NATS.Enabled {
		subscriber, err = boardnats.NewSubscriber(cfg.NATS, svc)
		if err != nil {
			slog.Warn("Failed to connect to NATS (continuing without NATS)",
				slog.String("url", cfg.NATS.URL),
				slog.String("error", err.Error()))
			subscriber = nil
		} else if err := subscriber.Start(); err != nil {
			slog.Warn("Failed to start NATS subscriber",
				slog.String("error", err.Error()))
			subscriber.Stop()
			subscriber = nil
		} else {
			slog.Info("Connected to NATS", slog.String("url", cfg.NATS.URL))
		}
	} else {
		slog.Info("NATS messaging disabled")
	}

	srv := &http.Server{
		Addr: listenAddr,
		Handler: server.NewRouter(server.Config{
			Handler:        h,
			APIKey:         cfg.APIKey,
			Limiter:        limiter,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		}),
		ReadTimeout: cfg.Server.ReadTimeout(),
		IdleTimeout: cfg.Server.IdleTimeout(),
		// No WriteTimeout: stream connections are long-lived and would
		// be cut mid-flight by any fixed deadline.
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("alertboard listening on %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCtx.Done()
	log.Println("shutdown signal received")

	if subscriber != nil {
		log.Println("stopping NATS subscriber")
		if err := subscriber.Stop(); err != nil {
			log.Printf("NATS subscriber shutdown error: %v", err)
		}
	}

	// Closing the broadcaster ends every stream handler loop, freeing
	// the long-lived connections so Shutdown can finish.
	broadcaster.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
