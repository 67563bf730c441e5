package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"review_dashboard/internal/domain"
)

type aggregator interface {
	FetchAll(ctx context.Context, q domain.FetchQuery) (domain.Aggregate, error)
}

// QueryService answers dashboard and property-page reads over the aggregated
// set. Aggregates are cached without approval state; approval is attached per call.
type QueryService struct {
	agg       aggregator
	cache     domain.Cache
	cacheTTL  time.Duration
	approvals domain.Approvals
	now       func() time.Time
}

func NewQueryService(a aggregator, c domain.Cache, ttl time.Duration, approvals domain.Approvals) *QueryService {
	return &QueryService{agg: a, cache: c, cacheTTL: ttl, approvals: approvals, now: time.Now}
}

// WithClock overrides the time source used for date windows.
func (s *QueryService) WithClock(now func() time.Time) *QueryService {
	s.now = now
	return s
}

func aggregateKey(listingID string) string {
	if listingID == "" {
		listingID = "*"
	}
	return fmt.Sprintf("reviews:agg:%s", listingID)
}

// Aggregate returns the merged review set, from cache when possible.
func (s *QueryService) Aggregate(ctx context.Context, listingID string) (domain.Aggregate, error) {
	key := aggregateKey(listingID)
	var out domain.Aggregate
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, &out); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		} else if ok {
			return out, nil
		}
	}

	out, err := s.agg.FetchAll(ctx, domain.FetchQuery{ListingID: listingID})
	if err != nil {
		return domain.Aggregate{}, err
	}

	// optional size guard
	if s.cache != nil {
		if b, _ := json.Marshal(out); len(b) < 4_000_000 {
			ttl := s.cacheTTL
			if degraded(out) && ttl > degradedTTL {
				ttl = degradedTTL
			}
			if err := s.cache.Set(ctx, key, out, int(ttl.Seconds())); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("cache write failed")
			}
		}
	}
	return out, nil
}

// degradedTTL bounds how long an aggregate built from fallback data or with a
// failed source stays cached.
const degradedTTL = 30 * time.Second

func degraded(a domain.Aggregate) bool {
	for _, m := range a.Meta {
		if m.Fallback || m.Error != "" {
			return true
		}
	}
	return false
}

// Invalidate drops the cached aggregate for a listing ("" for all listings).
func (s *QueryService) Invalidate(ctx context.Context, listingID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, aggregateKey(listingID))
}

func listingOf(f domain.Filters) string {
	if f.ListingID == nil {
		return ""
	}
	return *f.ListingID
}

func (s *QueryService) ListReviews(ctx context.Context, f domain.Filters, pg domain.PageQuery) (domain.ReviewsPage, error) {
	agg, err := s.Aggregate(ctx, listingOf(f))
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	all := QueryReviews(agg.Reviews, f, s.approvals, s.now())
	if pg.Limit <= 0 {
		pg.Limit = domain.DefaultPageLimit
	}
	return domain.ReviewsPage{
		Items:   Paginate(all, pg),
		Total:   len(all),
		Limit:   pg.Limit,
		Offset:  pg.Offset,
		Sources: agg.Sources,
		Meta:    agg.Meta,
	}, nil
}

func (s *QueryService) Stats(ctx context.Context, f domain.Filters) (domain.PropertyStats, error) {
	agg, err := s.Aggregate(ctx, listingOf(f))
	if err != nil {
		return domain.PropertyStats{}, err
	}
	now := s.now()
	return ComputeStats(FilterReviews(agg.Reviews, f, now), now), nil
}

type PublicPage struct {
	ListingID string               `json:"listingId"`
	Reviews   []domain.Review      `json:"reviews"`
	Stats     domain.PropertyStats `json:"stats"`
}

// PublicReviews returns only the reviews approved for a listing's public page.
func (s *QueryService) PublicReviews(ctx context.Context, listingID string) (PublicPage, error) {
	agg, err := s.Aggregate(ctx, listingID)
	if err != nil {
		return PublicPage{}, err
	}
	f := domain.Filters{ListingID: &listingID}
	now := s.now()
	approved := make([]domain.Review, 0)
	for _, r := range QueryReviews(agg.Reviews, f, s.approvals, now) {
		if r.IsApprovedForWebsite {
			approved = append(approved, r)
		}
	}
	return PublicPage{ListingID: listingID, Reviews: approved, Stats: ComputeStats(approved, now)}, nil
}

func (s *QueryService) Listings(ctx context.Context) ([]domain.ListingSummary, error) {
	agg, err := s.Aggregate(ctx, "")
	if err != nil {
		return nil, err
	}
	return Listings(agg.Reviews), nil
}
