package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_dashboard/internal/adapters/observability"
	redisad "review_dashboard/internal/adapters/redis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/bootstrap"
	"review_dashboard/internal/shared"
)

// warmer refreshes the cached aggregate for the global view and every
// configured listing.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	listings := append([]string{""}, cfg.WarmListings...)
	log.Info().
		Int("workers", cfg.WarmWorkers).
		Int("listings", len(listings)).
		Msg("warmer starting")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	q := app.NewQueryService(bootstrap.Aggregator(cfg), cache, cfg.CacheTTL, nil)

	sem := semaphore.NewWeighted(int64(max(cfg.WarmWorkers, 1)))
	var wg sync.WaitGroup

	for _, id := range listings {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(listingID string) {
			defer wg.Done()
			defer sem.Release(1)

			if err := q.Invalidate(ctx, listingID); err != nil {
				log.Warn().Str("listing", listingID).Err(err).Msg("invalidate failed")
			}
			agg, err := q.Aggregate(ctx, listingID)
			if err != nil {
				log.Warn().Str("listing", listingID).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("listing", listingID).Int("reviews", len(agg.Reviews)).
				Strs("sources", agg.Sources).Msg("warm ok")
		}(id)
	}

	wg.Wait()
	log.Info().Msg("warm completed")
}
