package app

import (
	"time"

	"review_dashboard/internal/domain"
)

// FilterReviews keeps reviews matching every set filter. The input is not modified.
func FilterReviews(reviews []domain.Review, f domain.Filters, now time.Time) []domain.Review {
	var cutoff time.Time
	if f.DateRange != nil {
		cutoff = now.AddDate(0, 0, -*f.DateRange)
	}
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if f.ListingID != nil && r.ListingID != *f.ListingID {
			continue
		}
		if f.Channel != nil && r.Channel != *f.Channel {
			continue
		}
		if f.MinRating != nil && r.AverageRating < *f.MinRating {
			continue
		}
		if f.Sentiment != nil && r.Sentiment != *f.Sentiment {
			continue
		}
		if f.DateRange != nil && r.NormalizedDate.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// QueryReviews filters and then attaches approval status to copies of the
// matching reviews. All reviews are annotated from one approval snapshot.
func QueryReviews(reviews []domain.Review, f domain.Filters, approvals domain.Approvals, now time.Time) []domain.Review {
	var approved map[string]struct{}
	if approvals != nil {
		approved = approvals.AllApproved()
	}
	matched := FilterReviews(reviews, f, now)
	out := make([]domain.Review, len(matched))
	for i, r := range matched {
		c := r.Clone()
		_, c.IsApprovedForWebsite = approved[c.ID]
		out[i] = c
	}
	return out
}

// Paginate slices an already filtered set.
func Paginate(reviews []domain.Review, pg domain.PageQuery) []domain.Review {
	if pg.Limit <= 0 {
		pg.Limit = domain.DefaultPageLimit
	}
	if pg.Offset >= len(reviews) {
		return []domain.Review{}
	}
	end := pg.Offset + pg.Limit
	if end > len(reviews) {
		end = len(reviews)
	}
	return reviews[pg.Offset:end]
}
