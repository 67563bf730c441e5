// Package bootstrap builds the review sources and stores from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"review_dashboard/internal/adapters/hostaway"
	"review_dashboard/internal/adapters/places"
	redisad "review_dashboard/internal/adapters/redis"
	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
	"review_dashboard/internal/shared"
	mysqlrepo "review_dashboard/internal/storage/mysql"
	"review_dashboard/migrations"
)

// Aggregator wires every source in invocation order: hostaway first, places second.
func Aggregator(cfg shared.Config) *app.Aggregator {
	var hc domain.HostawayClient
	if ts, err := hostaway.NewTokenSource(cfg.HostawayBase, cfg.HostawayAccount, cfg.HostawayKey); err == nil {
		c, err := hostaway.New(cfg.HostawayBase, ts, cfg.HostawayRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize hostaway client")
		}
		hc = c
	}

	var pc domain.PlacesClient
	if c, err := places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesRPS); err == nil {
		pc = c
	} else if !errors.Is(err, domain.ErrNotConfigured) {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}
	refs := make([]app.PlaceRef, 0, len(cfg.Places))
	for _, p := range cfg.Places {
		refs = append(refs, app.PlaceRef{ID: p.ID, Name: p.Name})
	}

	hs := app.NewHostawaySource(hc, cfg.HostawayScale)
	ps := app.NewPlacesSource(pc, refs, cfg.PlacesScale)
	log.Info().
		Bool("hostaway", hs.IsAvailable()).
		Bool("places", ps.IsAvailable()).
		Int("place_count", len(refs)).
		Msg("review sources configured")
	return app.NewAggregator(cfg.SourceTimeout, app.SourceHostaway, hs, ps)
}

// ApprovalStore opens the durable store selected by APPROVAL_BACKEND.
// The returned close func releases the underlying connection.
func ApprovalStore(cfg shared.Config, rc redis.UniversalClient) (domain.ApprovalStore, func() error, error) {
	switch cfg.ApprovalBackend {
	case "", "redis":
		return redisad.NewApprovalStore(rc), func() error { return nil }, nil
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("db.Ping: %w", err)
		}
		if err := migrations.Apply(context.Background(), db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return mysqlrepo.New(db), db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown APPROVAL_BACKEND %q", cfg.ApprovalBackend)
}
