package app

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"review_dashboard/internal/domain"
)

/********** alias registries (single source of truth) **********/

var hostawayAliases = map[string][]string{
	"id":           {"id", "reviewId", "review_id"},
	"type":         {"type", "reviewType"},
	"status":       {"status"},
	"text":         {"publicReview", "public_review", "comment", "text"},
	"guest":        {"guestName", "guest_name", "reviewerName"},
	"listing_name": {"listingName", "listing_name", "listing.name"},
	"listing_id":   {"listingCode", "listing.code"},
	"submitted":    {"submittedAt", "submitted_at", "departureDate", "date"},
	"channel":      {"channel", "channelName", "source"},
}

var placeAliases = map[string][]string{
	"author": {"author_name", "authorAttribution.displayName", "author"},
	"text":   {"text", "text.text", "originalText.text"},
	"time":   {"time", "publishTime"},
}

var hostawayChannelIDs = map[int64]domain.Channel{
	2000: domain.ChannelDirect,
	2002: domain.ChannelVrbo,
	2005: domain.ChannelBooking,
	2018: domain.ChannelAirbnb,
}

var submittedLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

const submittedFormat = "2006-01-02 15:04:05"

// SourceContext carries what a normalizer needs that is not inside the raw record.
type SourceContext struct {
	Source        string
	CategoryScale float64
	PlaceID       string
	PlaceName     string
	Index         int
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set, or "".
func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := strings.TrimSpace(lookupStr(m, p)); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		if f := toFloat(lookupAny(m, k)); f != nil {
			return f
		}
	}
	return nil
}

func toFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return &t
	case int:
		f := float64(t)
		return &f
	case int64:
		f := float64(t)
		return &f
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return &f
		}
	}
	return nil
}

// firstInt64Flexible: int64 from several paths (float64/int/string).
func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

// idString renders a numeric or string id without float noise.
func idString(m map[string]any, paths ...string) string {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}

func parseSubmittedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range submittedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseCategories(m map[string]any) []domain.CategoryRating {
	raw, _ := lookupAny(m, "reviewCategory").([]any)
	out := make([]domain.CategoryRating, 0, len(raw))
	for _, it := range raw {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		name := strings.TrimSpace(lookupStr(obj, "category"))
		r := toFloat(obj["rating"])
		if name == "" || r == nil {
			continue
		}
		out = append(out, domain.CategoryRating{Category: name, Rating: *r})
	}
	return out
}

// overallRating averages the rescaled categories, else falls back to the raw rating.
func overallRating(cats []domain.CategoryRating, raw *float64, scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	var v float64
	if len(cats) > 0 {
		var sum float64
		for _, c := range cats {
			sum += c.Rating / scale
		}
		v = sum / float64(len(cats))
	} else if raw != nil {
		v = *raw
	}
	return clampRating(v)
}

func clampRating(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 5:
		return 5
	}
	return v
}

func reviewType(s string) domain.ReviewType {
	if domain.ReviewType(strings.ToLower(s)) == domain.ReviewHostToGuest {
		return domain.ReviewHostToGuest
	}
	return domain.ReviewGuestToHost
}

func reviewStatus(s string) domain.ReviewStatus {
	switch st := domain.ReviewStatus(strings.ToLower(s)); st {
	case domain.StatusPublished, domain.StatusPending, domain.StatusHidden:
		return st
	}
	return domain.StatusPublished
}

func hostawayChannel(r map[string]any) domain.Channel {
	if s := firstAlias(r, hostawayAliases, "channel"); s != "" {
		c := domain.Channel(strings.ToLower(s))
		if strings.HasPrefix(string(c), "booking") {
			c = domain.ChannelBooking
		}
		if c.Valid() {
			return c
		}
	}
	if id := firstInt64Flexible(r, "channelId", "channel_id"); id != nil {
		if c, ok := hostawayChannelIDs[*id]; ok {
			return c
		}
	}
	return domain.ChannelHostaway
}

func stableID(parts ...string) string {
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// finish derives sentiment and keywords from the normalized fields.
func finish(rv domain.Review) domain.Review {
	rv.Sentiment = ClassifySentiment(rv.AverageRating, rv.PublicReview)
	rv.Keywords = ExtractKeywords(rv.PublicReview, DefaultKeywordLimit)
	return rv
}

/********** hostaway mapper **********/

// NormalizeHostaway maps one property-management review record. Missing fields
// get defaults; it never fails.
func NormalizeHostaway(r map[string]any, sc SourceContext) domain.Review {
	if r == nil {
		r = map[string]any{}
	}
	var rv domain.Review
	rv.Source = sc.Source
	rv.CategoryScale = sc.CategoryScale
	rv.Type = reviewType(firstAlias(r, hostawayAliases, "type"))
	rv.Status = reviewStatus(firstAlias(r, hostawayAliases, "status"))
	rv.PublicReview = firstAlias(r, hostawayAliases, "text")
	rv.GuestName = firstAlias(r, hostawayAliases, "guest")
	rv.ListingName = firstAlias(r, hostawayAliases, "listing_name")
	rv.SubmittedAt = firstAlias(r, hostawayAliases, "submitted")
	rv.NormalizedDate = parseSubmittedAt(rv.SubmittedAt)
	rv.Channel = hostawayChannel(r)
	rv.Rating = getFloatFlexible(r, "rating")
	rv.ReviewCategory = parseCategories(r)
	rv.AverageRating = overallRating(rv.ReviewCategory, rv.Rating, sc.CategoryScale)

	rv.ListingID = firstAlias(r, hostawayAliases, "listing_id")
	if rv.ListingID == "" {
		rv.ListingID = ResolveListingID(rv.ListingName)
	}

	rv.ID = idString(r, hostawayAliases["id"]...)
	if rv.ID == "" {
		rv.ID = stableID(rv.GuestName, rv.ListingName, rv.SubmittedAt, rv.PublicReview)
	}
	return finish(rv)
}

/********** places mapper **********/

// NormalizePlace maps one places review. Places report 0..5 and carry no category
// breakdown; the place id stands in for the listing id.
func NormalizePlace(r map[string]any, sc SourceContext) domain.Review {
	if r == nil {
		r = map[string]any{}
	}
	var rv domain.Review
	rv.Source = sc.Source
	rv.CategoryScale = sc.CategoryScale
	rv.ID = fmt.Sprintf("%s-%s-%d", sc.Source, sc.PlaceID, sc.Index)
	rv.Type = domain.ReviewGuestToHost
	rv.Status = domain.StatusPublished
	rv.Channel = domain.ChannelGoogle
	rv.PublicReview = firstAlias(r, placeAliases, "text")
	rv.GuestName = firstAlias(r, placeAliases, "author")
	rv.ListingName = sc.PlaceName
	rv.ListingID = sc.PlaceID
	if rv.ListingID == "" {
		rv.ListingID = ResolveListingID(sc.PlaceName)
	}
	rv.Rating = getFloatFlexible(r, "rating")
	rv.ReviewCategory = []domain.CategoryRating{}
	rv.AverageRating = overallRating(nil, rv.Rating, sc.CategoryScale)

	if ts := firstInt64Flexible(r, "time"); ts != nil && *ts > 0 {
		rv.SubmittedAt = time.Unix(*ts, 0).UTC().Format(submittedFormat)
	} else {
		rv.SubmittedAt = firstAlias(r, placeAliases, "time")
	}
	rv.NormalizedDate = parseSubmittedAt(rv.SubmittedAt)
	return finish(rv)
}
