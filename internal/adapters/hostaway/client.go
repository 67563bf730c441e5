package hostaway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"review_dashboard/internal/adapters/upstream"
	"review_dashboard/internal/domain"
)

const pageSize = 100

type reviewsEnvelope struct {
	Status string           `json:"status"`
	Result []map[string]any `json:"result"`
}

// Client reads raw reviews from the property-management API.
type Client struct {
	base string
	auth domain.AuthProvider
	up   *upstream.Client
}

func New(base string, auth domain.AuthProvider, rps int) (*Client, error) {
	if auth == nil {
		return nil, domain.ErrNotConfigured
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		auth: auth,
		up:   upstream.New("hostaway", rps, 20*time.Second).WithHeaders(auth.AuthHeaders),
	}, nil
}

// GetReviews returns raw review records, optionally scoped to a listing. A 401
// invalidates the cached token and retries once.
func (c *Client) GetReviews(ctx context.Context, listingID string) ([]map[string]any, error) {
	var all []map[string]any
	for offset := 0; ; offset += pageSize {
		q := url.Values{}
		q.Set("limit", fmt.Sprint(pageSize))
		q.Set("offset", fmt.Sprint(offset))
		if listingID != "" {
			q.Set("listingId", listingID)
		}
		u := c.base + "/reviews?" + q.Encode()

		var env reviewsEnvelope
		err := c.up.GetJSON(ctx, "reviews", u, &env)
		if errors.Is(err, domain.ErrUnauthorized) {
			c.auth.Invalidate()
			env = reviewsEnvelope{}
			err = c.up.GetJSON(ctx, "reviews", u, &env)
		}
		if err != nil {
			return nil, err
		}
		if env.Status != "" && env.Status != "success" {
			return nil, fmt.Errorf("hostaway status %q", env.Status)
		}
		all = append(all, env.Result...)
		if len(env.Result) < pageSize {
			return all, nil
		}
	}
}
