package app

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"review_dashboard/internal/domain"
)

// ParseFilters turns query parameters into filters and a page. Unknown or
// malformed values are rejected rather than ignored.
func ParseFilters(v url.Values) (domain.Filters, domain.PageQuery, error) {
	var f domain.Filters
	pg := domain.PageQuery{Limit: domain.DefaultPageLimit}

	if s := strings.TrimSpace(v.Get("listingId")); s != "" {
		f.ListingID = &s
	}
	if s := strings.TrimSpace(v.Get("channel")); s != "" {
		c := domain.Channel(strings.ToLower(s))
		if !c.Valid() {
			return f, pg, &domain.ValidationError{Field: "channel", Value: s, Reason: "unknown channel"}
		}
		f.Channel = &c
	}
	if s := strings.TrimSpace(v.Get("minRating")); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(r) {
			return f, pg, &domain.ValidationError{Field: "minRating", Value: s, Reason: "must be a number"}
		}
		if r < 0 || r > 5 {
			return f, pg, &domain.ValidationError{Field: "minRating", Value: s, Reason: "must be between 0 and 5"}
		}
		f.MinRating = &r
	}
	if s := strings.TrimSpace(v.Get("sentiment")); s != "" {
		st := domain.Sentiment(strings.ToLower(s))
		if !st.Valid() {
			return f, pg, &domain.ValidationError{Field: "sentiment", Value: s, Reason: "must be positive, neutral or negative"}
		}
		f.Sentiment = &st
	}
	if s := strings.TrimSpace(v.Get("dateRange")); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil || d <= 0 {
			return f, pg, &domain.ValidationError{Field: "dateRange", Value: s, Reason: "must be a positive number of days"}
		}
		f.DateRange = &d
	}
	if s := strings.TrimSpace(v.Get("limit")); s != "" {
		l, err := strconv.Atoi(s)
		if err != nil || l <= 0 || l > domain.MaxPageLimit {
			return f, pg, &domain.ValidationError{Field: "limit", Value: s, Reason: "must be an integer between 1 and 200"}
		}
		pg.Limit = l
	}
	if s := strings.TrimSpace(v.Get("offset")); s != "" {
		o, err := strconv.Atoi(s)
		if err != nil || o < 0 {
			return f, pg, &domain.ValidationError{Field: "offset", Value: s, Reason: "must be a non-negative integer"}
		}
		pg.Offset = o
	}
	return f, pg, nil
}
