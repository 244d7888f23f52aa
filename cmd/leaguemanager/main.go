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
	"github.com/leaguerunner/tournament/internal/leagueauth"
	"github.com/leaguerunner/tournament/internal/leaguemanager"
	"github.com/leaguerunner/tournament/internal/repository"
	"github.com/leaguerunner/tournament/internal/repository/memory"
	"github.com/leaguerunner/tournament/internal/repository/postgres"
	"github.com/leaguerunner/tournament/internal/repository/rediskv"
	"github.com/leaguerunner/tournament/internal/transport"
	"github.com/leaguerunner/tournament/internal/wsobserver"
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

	log.Info("starting league manager", zap.Int("port", cfg.Server.Port), zap.String("store_backend", cfg.Store.Backend))

	_ = metrics.New(cfg.Metrics.Namespace)

	standings, matches, err := buildRepositories(cfg, log)
	if err != nil {
		log.Fatal("failed to build repositories", zap.Error(err))
	}

	leagueID := getEnv("LEAGUE_ID", "L1")
	auth := leagueauth.NewManager(cfg.LeagueAuth.Secret)

	httpClient := &http.Client{Timeout: cfg.Timeout.Transport}
	policy := retry.Policy{BaseDelay: cfg.Timeout.RetryBase, MaxDelay: cfg.Timeout.RetryCap, MaxRetries: cfg.Timeout.RetryCount}
	fanoutClient := transport.NewClient(httpClient, policy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := wsobserver.NewHub(log)
	go hub.Run(ctx)
	wsHandler := wsobserver.NewHandler(hub, log)

	mgr := leaguemanager.New(leagueID, auth, standings, matches, cfg.Schedule, fanoutClient, hub, log)

	diagHandler := diagnostics.NewHandler(log)
	server := transport.NewServer(mgr.HandleMessage, cfg.CORS, diagHandler, log)
	server.Router().Get("/ws/leagues/{id}", wsHandler.HandleLeague)
	server.Router().Get("/ws/stats", wsHandler.Stats)

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
		log.Info("league manager listening", zap.String("addr", srv.Addr), zap.String("league_id", leagueID))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down league manager")

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

	cancel()
	log.Info("league manager stopped gracefully")
}

func buildRepositories(cfg *config.Config, log *logger.Logger) (repository.StandingsRepository, repository.MatchRepository, error) {
	switch cfg.Store.Backend {
	case "redis":
		client, err := rediskv.NewClient(context.Background(), cfg.Store)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Info("connected to redis", zap.String("addr", cfg.Store.RedisAddress()))
		return rediskv.NewStandings(client), rediskv.NewMatches(client), nil
	case "postgres":
		db, err := postgres.New(context.Background(), cfg.Store)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("connected to postgres", zap.String("host", cfg.Store.PostgresHost))
		return postgres.NewStandings(db), postgres.NewMatches(db), nil
	default:
		return memory.NewStandings(), memory.NewMatches(), nil
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
