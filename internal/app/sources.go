package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"review_dashboard/internal/adapters/observability"
	"review_dashboard/internal/domain"
	"review_dashboard/internal/fixtures"
)

const (
	SourceHostaway = "hostaway"
	SourcePlaces   = "google"
)

/********** property-management source **********/

// HostawaySource is the primary source. Upstream failures and empty results are
// served from the embedded dataset, so Fetch never returns an error.
type HostawaySource struct {
	client   domain.HostawayClient
	scale    float64
	fallback func() ([]map[string]any, error)
}

// NewHostawaySource accepts a nil client; the source then serves the fallback
// dataset and reports itself unavailable.
func NewHostawaySource(c domain.HostawayClient, categoryScale float64) *HostawaySource {
	if categoryScale <= 0 {
		categoryScale = 2
	}
	return &HostawaySource{client: c, scale: categoryScale, fallback: fixtures.HostawayReviews}
}

func (s *HostawaySource) Name() string      { return SourceHostaway }
func (s *HostawaySource) IsAvailable() bool { return s.client != nil }

func (s *HostawaySource) Fetch(ctx context.Context, q domain.FetchQuery) ([]domain.Review, error) {
	revs, err := s.fetchUpstream(ctx, q)
	if err == nil && len(revs) > 0 {
		observability.ObserveSourceFetch(SourceHostaway, "ok")
		return revs, nil
	}
	if err == nil {
		err = &domain.SourceError{Source: SourceHostaway, Err: errors.New("empty result")}
	}
	log.Warn().Err(err).Str("source", SourceHostaway).Str("listing", q.ListingID).
		Msg("serving fallback reviews")
	observability.ObserveSourceFetch(SourceHostaway, "fallback")
	markFallback(ctx)
	return s.fallbackReviews(q), nil
}

func (s *HostawaySource) fetchUpstream(ctx context.Context, q domain.FetchQuery) ([]domain.Review, error) {
	if s.client == nil {
		return nil, &domain.SourceError{Source: SourceHostaway, Err: domain.ErrNotConfigured}
	}
	raw, err := s.client.GetReviews(ctx, q.ListingID)
	if err != nil {
		return nil, &domain.SourceError{Source: SourceHostaway, Err: fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)}
	}
	return s.normalize(raw, q), nil
}

func (s *HostawaySource) fallbackReviews(q domain.FetchQuery) []domain.Review {
	raw, err := s.fallback()
	if err != nil {
		log.Error().Err(err).Str("source", SourceHostaway).Msg("fallback dataset unreadable")
		return []domain.Review{}
	}
	return s.normalize(raw, q)
}

func (s *HostawaySource) normalize(raw []map[string]any, q domain.FetchQuery) []domain.Review {
	sc := SourceContext{Source: SourceHostaway, CategoryScale: s.scale}
	out := make([]domain.Review, 0, len(raw))
	for _, r := range raw {
		rv := NormalizeHostaway(r, sc)
		if q.ListingID != "" && rv.ListingID != q.ListingID {
			continue
		}
		out = append(out, rv)
	}
	return out
}

/********** places source **********/

type PlaceRef struct {
	ID   string
	Name string
}

// PlacesSource is optional: without a client or configured places it
// contributes nothing.
type PlacesSource struct {
	client   domain.PlacesClient
	places   []PlaceRef
	scale    float64
	fallback func() (map[string]fixtures.Place, error)
}

func NewPlacesSource(c domain.PlacesClient, places []PlaceRef, categoryScale float64) *PlacesSource {
	if categoryScale <= 0 {
		categoryScale = 1
	}
	return &PlacesSource{client: c, places: places, scale: categoryScale, fallback: fixtures.Places}
}

func (s *PlacesSource) Name() string      { return SourcePlaces }
func (s *PlacesSource) IsAvailable() bool { return s.client != nil && len(s.places) > 0 }

func (s *PlacesSource) Fetch(ctx context.Context, q domain.FetchQuery) ([]domain.Review, error) {
	if !s.IsAvailable() {
		observability.ObserveSourceFetch(SourcePlaces, "disabled")
		return nil, nil
	}
	var (
		out  []domain.Review
		errs []error
	)
	for _, p := range s.places {
		if q.ListingID != "" && q.ListingID != p.ID {
			continue
		}
		d, err := s.client.GetPlaceReviews(ctx, p.ID)
		if err != nil {
			fb, ok := s.fallbackPlace(p.ID)
			if !ok {
				err = fmt.Errorf("place %s: %w", p.ID, err)
				log.Warn().Err(err).Str("source", SourcePlaces).Str("place", p.ID).Msg("place failed; no fallback")
				observability.ObserveSourceFetch(SourcePlaces, "error")
				errs = append(errs, err)
				continue
			}
			log.Warn().Err(err).Str("source", SourcePlaces).Str("place", p.ID).Msg("serving fallback reviews")
			observability.ObserveSourceFetch(SourcePlaces, "fallback")
			markFallback(ctx)
			d = fb
		}
		name := d.Name
		if name == "" {
			name = p.Name
		}
		for i, r := range d.Reviews {
			out = append(out, NormalizePlace(r, SourceContext{
				Source: SourcePlaces, CategoryScale: s.scale,
				PlaceID: p.ID, PlaceName: name, Index: i,
			}))
		}
	}
	if len(errs) > 0 {
		joined := &domain.SourceError{Source: SourcePlaces, Err: errors.Join(errs...)}
		if len(out) == 0 {
			return nil, joined
		}
		observability.ObserveSourceFetch(SourcePlaces, "partial")
		markPartial(ctx, joined)
		return out, nil
	}
	observability.ObserveSourceFetch(SourcePlaces, "ok")
	return out, nil
}

func (s *PlacesSource) fallbackPlace(id string) (domain.PlaceDetails, bool) {
	if s.fallback == nil {
		return domain.PlaceDetails{}, false
	}
	all, err := s.fallback()
	if err != nil {
		log.Error().Err(err).Str("source", SourcePlaces).Msg("fallback dataset unreadable")
		return domain.PlaceDetails{}, false
	}
	p, ok := all[id]
	if !ok {
		return domain.PlaceDetails{}, false
	}
	return domain.PlaceDetails{PlaceID: id, Name: p.Name, Reviews: p.Reviews}, true
}
