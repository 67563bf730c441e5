package app

import (
	"sort"
	"time"

	"review_dashboard/internal/domain"
)

const trendWindowDays = 30

// ComputeStats aggregates ratings, categories, sentiment and a daily trend for
// the trailing 30 days before now. The input is not modified.
func ComputeStats(reviews []domain.Review, now time.Time) domain.PropertyStats {
	st := domain.PropertyStats{
		TotalReviews:       len(reviews),
		CategoryAverages:   map[string]float64{},
		TrendData:          []domain.TrendPoint{},
		SentimentBreakdown: map[domain.Sentiment]int{},
	}
	if len(reviews) == 0 {
		return st
	}

	type acc struct {
		sum float64
		n   int
	}
	var total float64
	cats := map[string]*acc{}
	days := map[string]*acc{}
	cutoff := now.AddDate(0, 0, -trendWindowDays)

	for _, r := range reviews {
		total += r.AverageRating

		scale := r.CategoryScale
		if scale <= 0 {
			scale = 1
		}
		for _, c := range r.ReviewCategory {
			a := cats[c.Category]
			if a == nil {
				a = &acc{}
				cats[c.Category] = a
			}
			a.sum += c.Rating / scale
			a.n++
		}

		s := r.Sentiment
		if !s.Valid() {
			s = domain.SentimentNeutral
		}
		st.SentimentBreakdown[s]++

		if r.NormalizedDate.IsZero() || r.NormalizedDate.Before(cutoff) {
			continue
		}
		key := r.NormalizedDate.UTC().Format("2006-01-02")
		a := days[key]
		if a == nil {
			a = &acc{}
			days[key] = a
		}
		a.sum += r.AverageRating
		a.n++
	}

	st.AverageRating = total / float64(len(reviews))
	for k, a := range cats {
		st.CategoryAverages[k] = a.sum / float64(a.n)
	}
	for k, a := range days {
		st.TrendData = append(st.TrendData, domain.TrendPoint{Date: k, Rating: a.sum / float64(a.n), Count: a.n})
	}
	sort.Slice(st.TrendData, func(i, j int) bool { return st.TrendData[i].Date < st.TrendData[j].Date })
	return st
}

// Listings summarises the distinct listings present in reviews, ordered by id.
func Listings(reviews []domain.Review) []domain.ListingSummary {
	idx := map[string]int{}
	var out []domain.ListingSummary
	for _, r := range reviews {
		i, ok := idx[r.ListingID]
		if !ok {
			i = len(out)
			idx[r.ListingID] = i
			out = append(out, domain.ListingSummary{ListingID: r.ListingID, ListingName: r.ListingName})
		}
		s := &out[i]
		s.AverageRating = (s.AverageRating*float64(s.Reviews) + r.AverageRating) / float64(s.Reviews+1)
		s.Reviews++
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ListingID < out[j].ListingID })
	return out
}
