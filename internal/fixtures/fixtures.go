// Package fixtures holds the static datasets served when an upstream source
// cannot be reached.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed hostaway_reviews.json
var hostawayReviews []byte

//go:embed places_reviews.json
var placesReviews []byte

type hostawayEnvelope struct {
	Status string           `json:"status"`
	Result []map[string]any `json:"result"`
}

type Place struct {
	Name    string           `json:"name"`
	Reviews []map[string]any `json:"reviews"`
}

// HostawayReviews returns a fresh copy of the raw fallback records.
func HostawayReviews() ([]map[string]any, error) {
	var env hostawayEnvelope
	if err := json.Unmarshal(hostawayReviews, &env); err != nil {
		return nil, fmt.Errorf("decode hostaway fixture: %w", err)
	}
	return env.Result, nil
}

// Places returns the fallback place details keyed by place id.
func Places() (map[string]Place, error) {
	out := map[string]Place{}
	if err := json.Unmarshal(placesReviews, &out); err != nil {
		return nil, fmt.Errorf("decode places fixture: %w", err)
	}
	return out, nil
}
