package places

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"review_dashboard/internal/adapters/upstream"
	"review_dashboard/internal/domain"
)

type detailsEnvelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       struct {
		Name    string           `json:"name"`
		Reviews []map[string]any `json:"reviews"`
	} `json:"result"`
}

// Client reads place details (name and reviews) with an API key.
type Client struct {
	base string
	key  string
	up   *upstream.Client
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, domain.ErrNotConfigured
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		key:  key,
		up:   upstream.New("places", rps, 15*time.Second),
	}, nil
}

func (c *Client) GetPlaceReviews(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", "name,rating,reviews")
	q.Set("reviews_sort", "newest")
	q.Set("key", c.key)

	var env detailsEnvelope
	if err := c.up.GetJSON(ctx, "details", c.base+"/details/json?"+q.Encode(), &env); err != nil {
		return domain.PlaceDetails{}, err
	}
	switch env.Status {
	case "OK":
	case "NOT_FOUND", "ZERO_RESULTS", "INVALID_REQUEST":
		return domain.PlaceDetails{}, fmt.Errorf("place %s: %w", placeID, domain.ErrNotFound)
	case "REQUEST_DENIED":
		return domain.PlaceDetails{}, fmt.Errorf("place %s: %s: %w", placeID, env.ErrorMessage, domain.ErrUnauthorized)
	default:
		return domain.PlaceDetails{}, fmt.Errorf("place %s: status %s: %s", placeID, env.Status, env.ErrorMessage)
	}
	return domain.PlaceDetails{PlaceID: placeID, Name: env.Result.Name, Reviews: env.Result.Reviews}, nil
}
