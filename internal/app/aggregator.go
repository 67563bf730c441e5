package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"review_dashboard/internal/adapters/observability"
	"review_dashboard/internal/domain"
)

const tracerID = "review-aggregator"

// Aggregator fans out to every source, merges, de-duplicates and sorts.
// A failing source contributes zero reviews; it never fails the whole call.
type Aggregator struct {
	sources []domain.ReviewSource
	primary string
	timeout time.Duration
}

// NewAggregator keeps sources in invocation order; the first occurrence of a
// duplicated id wins. primary is always listed in Aggregate.Sources.
func NewAggregator(timeout time.Duration, primary string, sources ...domain.ReviewSource) *Aggregator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Aggregator{sources: sources, primary: primary, timeout: timeout}
}

type outcome struct {
	reviews  []domain.Review
	fallback bool
	partial  error
	err      error
}

// fetchReport lets a source note, during one Fetch, that it served fallback
// data or lost part of its result.
type fetchReport struct {
	fallback atomic.Bool

	mu      sync.Mutex
	partial []error
}

type reportKey struct{}

func markFallback(ctx context.Context) {
	if r, ok := ctx.Value(reportKey{}).(*fetchReport); ok {
		r.fallback.Store(true)
	}
}

func markPartial(ctx context.Context, err error) {
	if r, ok := ctx.Value(reportKey{}).(*fetchReport); ok {
		r.mu.Lock()
		r.partial = append(r.partial, err)
		r.mu.Unlock()
	}
}

func (r *fetchReport) partialErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return errors.Join(r.partial...)
}

func (a *Aggregator) FetchAll(ctx context.Context, q domain.FetchQuery) (domain.Aggregate, error) {
	if len(a.sources) == 0 {
		return domain.Aggregate{}, domain.ErrNoSources
	}

	outcomes := make([]outcome, len(a.sources))
	var g errgroup.Group
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			outcomes[i] = a.fetchOne(ctx, src, q)
			return nil // settle all
		})
	}
	_ = g.Wait()

	agg := domain.Aggregate{
		Sources: []string{},
		Meta:    make(map[string]domain.SourceMeta, len(a.sources)),
	}
	var merged []domain.Review
	for i, src := range a.sources {
		o := outcomes[i]
		meta := domain.SourceMeta{Enabled: src.IsAvailable(), Reviews: len(o.reviews), Fallback: o.fallback}
		switch {
		case o.err != nil:
			meta.Error = o.err.Error()
			log.Warn().Err(o.err).Str("source", src.Name()).Msg("source failed; contributing no reviews")
		case o.partial != nil:
			meta.Error = o.partial.Error()
		}
		agg.Meta[src.Name()] = meta
		if src.Name() == a.primary || len(o.reviews) > 0 {
			agg.Sources = append(agg.Sources, src.Name())
		}
		merged = append(merged, o.reviews...)
	}

	agg.Reviews = dedupByID(merged)
	if dropped := len(merged) - len(agg.Reviews); dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("duplicate review ids dropped")
	}
	sort.SliceStable(agg.Reviews, func(i, j int) bool {
		return agg.Reviews[i].NormalizedDate.After(agg.Reviews[j].NormalizedDate)
	})
	return agg, nil
}

func (a *Aggregator) fetchOne(ctx context.Context, src domain.ReviewSource, q domain.FetchQuery) (o outcome) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ctx, span := otel.Tracer(tracerID).Start(ctx, "Aggregator/"+src.Name())
	defer span.End()

	rep := &fetchReport{}
	ctx = context.WithValue(ctx, reportKey{}, rep)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o = outcome{err: &domain.SourceError{Source: src.Name(), Err: fmt.Errorf("panic: %v", r)}}
		}
		o.fallback = rep.fallback.Load()
		if o.err == nil {
			o.partial = rep.partialErr()
		}
		if o.err != nil {
			span.RecordError(o.err)
			span.SetStatus(codes.Error, o.err.Error())
		}
		span.SetAttributes(attribute.Int("reviews", len(o.reviews)), attribute.Bool("fallback", o.fallback))
		observability.ObserveSourceLatency(src.Name(), o.err, time.Since(start))
	}()

	revs, err := src.Fetch(ctx, q)
	if err != nil {
		return outcome{err: err}
	}
	return outcome{reviews: revs}
}

func dedupByID(in []domain.Review) []domain.Review {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}
