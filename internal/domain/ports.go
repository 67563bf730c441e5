package domain

import (
	"context"
	"net/http"
)

// ReviewSource fetches canonical reviews from one upstream.
type ReviewSource interface {
	Name() string
	IsAvailable() bool
	Fetch(ctx context.Context, q FetchQuery) ([]Review, error)
}

// HostawayClient returns raw review records from the property-management API.
type HostawayClient interface {
	GetReviews(ctx context.Context, listingID string) ([]map[string]any, error)
}

// PlacesClient returns place details (name + reviews) from the places API.
type PlacesClient interface {
	GetPlaceReviews(ctx context.Context, placeID string) (PlaceDetails, error)
}

type PlaceDetails struct {
	PlaceID string
	Name    string
	Reviews []map[string]any
}

// AuthProvider is the authenticated-fetch capability used by upstream clients.
type AuthProvider interface {
	AuthHeaders(ctx context.Context) (http.Header, error)
	Invalidate()
}

// ApprovalStore is the durable key set of review ids approved for the website.
type ApprovalStore interface {
	Load(ctx context.Context) (map[string]struct{}, error)
	Set(ctx context.Context, id string, approved bool) error
}

// Approvals is the read side consumed by the query engine.
type Approvals interface {
	IsApproved(id string) bool
	AllApproved() map[string]struct{}
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
