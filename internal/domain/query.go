package domain

// Filters are combined with AND semantics; nil fields impose no constraint.
type Filters struct {
	ListingID *string
	Channel   *Channel
	MinRating *float64
	Sentiment *Sentiment
	DateRange *int // trailing days
}

type PageQuery struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// FetchQuery scopes an upstream fetch.
type FetchQuery struct {
	ListingID string
}

type SourceMeta struct {
	Enabled  bool   `json:"enabled"`
	Reviews  int    `json:"reviews"`
	Fallback bool   `json:"fallback,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Aggregate is the merged, de-duplicated review set across sources.
type Aggregate struct {
	Reviews []Review              `json:"reviews"`
	Sources []string              `json:"sources"`
	Meta    map[string]SourceMeta `json:"meta"`
}

type ReviewsPage struct {
	Items   []Review              `json:"reviews"`
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
	Sources []string              `json:"sources"`
	Meta    map[string]SourceMeta `json:"meta"`
}

type TrendPoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}

type PropertyStats struct {
	TotalReviews       int                `json:"totalReviews"`
	AverageRating      float64            `json:"averageRating"`
	CategoryAverages   map[string]float64 `json:"categoryAverages"`
	TrendData          []TrendPoint       `json:"trendData"`
	SentimentBreakdown map[Sentiment]int  `json:"sentimentBreakdown"`
}

type ListingSummary struct {
	ListingID     string  `json:"listingId"`
	ListingName   string  `json:"listingName"`
	Reviews       int     `json:"reviews"`
	AverageRating float64 `json:"averageRating"`
}
