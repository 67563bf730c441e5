package domain

import "time"

type ReviewType string

const (
	ReviewGuestToHost ReviewType = "guest-to-host"
	ReviewHostToGuest ReviewType = "host-to-guest"
)

type ReviewStatus string

const (
	StatusPublished ReviewStatus = "published"
	StatusPending   ReviewStatus = "pending"
	StatusHidden    ReviewStatus = "hidden"
)

type Channel string

const (
	ChannelHostaway Channel = "hostaway"
	ChannelAirbnb   Channel = "airbnb"
	ChannelBooking  Channel = "booking"
	ChannelVrbo     Channel = "vrbo"
	ChannelGoogle   Channel = "google"
	ChannelDirect   Channel = "direct"
)

var channels = map[Channel]struct{}{
	ChannelHostaway: {}, ChannelAirbnb: {}, ChannelBooking: {},
	ChannelVrbo: {}, ChannelGoogle: {}, ChannelDirect: {},
}

func (c Channel) Valid() bool { _, ok := channels[c]; return ok }

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func (s Sentiment) Valid() bool {
	return s == SentimentPositive || s == SentimentNeutral || s == SentimentNegative
}

type CategoryRating struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"` // source native scale
}

// Review is the canonical, source-agnostic review record.
// Everything except IsApprovedForWebsite is fixed once a normalizer returns it.
type Review struct {
	ID             string           `json:"id"`
	Type           ReviewType       `json:"type"`
	Status         ReviewStatus     `json:"status"`
	Rating         *float64         `json:"rating"`
	AverageRating  float64          `json:"averageRating"` // 0..5
	PublicReview   string           `json:"publicReview"`
	ReviewCategory []CategoryRating `json:"reviewCategory"`
	SubmittedAt    string           `json:"submittedAt"`
	NormalizedDate time.Time        `json:"normalizedDate"`
	GuestName      string           `json:"guestName"`
	ListingID      string           `json:"listingId"`
	ListingName    string           `json:"listingName"`
	Channel        Channel          `json:"channel"`
	Source         string           `json:"source"`
	Sentiment      Sentiment        `json:"sentiment"`
	Keywords       []string         `json:"keywords"`
	// CategoryScale is the divisor that maps ReviewCategory ratings onto 0..5.
	CategoryScale float64 `json:"categoryScale"`

	IsApprovedForWebsite bool `json:"isApprovedForWebsite"`
}

// Clone returns a copy that shares no slices with r.
func (r Review) Clone() Review {
	out := r
	if r.Rating != nil {
		v := *r.Rating
		out.Rating = &v
	}
	if r.ReviewCategory != nil {
		out.ReviewCategory = append([]CategoryRating(nil), r.ReviewCategory...)
	}
	if r.Keywords != nil {
		out.Keywords = append([]string(nil), r.Keywords...)
	}
	return out
}
