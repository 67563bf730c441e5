package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	server "review_dashboard/internal/adapters/http_server"
	"review_dashboard/internal/adapters/observability"
	redisad "review_dashboard/internal/adapters/redis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/bootstrap"
	"review_dashboard/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass, DB: cfg.RedisDB})
	defer rc.Close()
	cache := redisad.NewWithClient(rc)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis ping failed; cache and redis approvals degraded")
	}

	store, closeStore, err := bootstrap.ApprovalStore(cfg, rc)
	if err != nil {
		log.Fatal().Err(err).Msg("approval store init failed")
	}
	defer closeStore()

	approvals := app.NewApprovalService(store)
	if err := approvals.Init(ctx); err != nil {
		log.Error().Err(err).Msg("approval state unavailable; starting empty")
	}

	agg := bootstrap.Aggregator(cfg)
	q := app.NewQueryService(agg, cache, cfg.CacheTTL, approvals)

	srv := server.New(cfg.SourceTimeout + 5*time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, A: approvals})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	if err := approvals.Flush(shutdownCtx); err != nil {
		log.Error().Err(err).Interface("unsynced", approvals.Unsynced()).
			Msg("approval decisions not persisted before exit")
	}
	log.Info().Msg("API stopped")
}
