package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leaguerunner/tournament/internal/config"
	"github.com/leaguerunner/tournament/internal/diagnostics"
	"github.com/leaguerunner/tournament/internal/gameengine"
	"github.com/leaguerunner/tournament/internal/protocol"
	"github.com/leaguerunner/tournament/internal/referee"
	"github.com/leaguerunner/tournament/internal/transport"
	"github.com/leaguerunner/tournament/pkg/logger"
	"github.com/leaguerunner/tournament/pkg/metrics"
	"github.com/leaguerunner/tournament/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Async:  cfg.Logging.Async,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	contactEndpoint := requireEnv(log, "AGENT_CONTACT_ENDPOINT")
	lmEndpoint := requireEnv(log, "LEAGUE_MANAGER_ENDPOINT")

	m := metrics.New(cfg.Metrics.Namespace)

	httpClient := &http.Client{Timeout: cfg.Timeout.Transport}
	policy := retry.Policy{BaseDelay: cfg.Timeout.RetryBase, MaxDelay: cfg.Timeout.RetryCap, MaxRetries: cfg.Timeout.RetryCount}
	caller := transport.NewClient(httpClient, policy)

	ref := referee.New(contactEndpoint, lmEndpoint, caller, gameengine.NewParityEngine(), cfg.Referee, cfg.Timeout, log, m)

	registerCtx, registerCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = ref.Register(registerCtx, protocol.RefereeMeta{
		DisplayName:          getEnv("AGENT_DISPLAY_NAME", "referee"),
		Version:              getEnv("AGENT_VERSION", "1.0.0"),
		ContactEndpoint:      contactEndpoint,
		GameTypes:            []string{"even_odd"},
		MaxConcurrentMatches: cfg.Referee.MaxConcurrentMatches,
	})
	registerCancel()
	if err != nil {
		log.Fatal("failed to register with league manager", zap.Error(err))
	}
	log.Info("referee registered", zap.String("referee_id", ref.ID()))

	diagHandler := diagnostics.NewHandler(log)
	server := transport.NewServer(ref.HandleMessage, cfg.CORS, diagHandler, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:      metricsMux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			log.Info("metrics server listening", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("referee listening", zap.String("addr", srv.Addr), zap.String("contact_endpoint", contactEndpoint))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down referee")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("metrics server forced to shutdown", zap.Error(err))
		}
	}

	log.Info("referee stopped gracefully")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func requireEnv(log *logger.Logger, key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatal("missing required environment variable", zap.String("key", key))
	}
	return v
}
