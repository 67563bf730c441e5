package app_test

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"review_dashboard/internal/app"
	"review_dashboard/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestExtractKeywords(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"only stopwords and short tokens", "The the the", []string{}},
		{"frequency then first occurrence",
			"Spotless apartment, great location! The location was great; apartment spotless. Location.",
			[]string{"location", "spotless", "apartment", "great"}},
		{"punctuation stripped", "Check-in was quick... check-in!!", []string{"checkin", "quick"}},
		{"case folded", "Kitchen KITCHEN kitchen balcony", []string{"kitchen", "balcony"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := app.ExtractKeywords(tc.text, 5)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractKeywords_Limit(t *testing.T) {
	text := "alpha bravo charlie delta echoes foxtrot golfer hotel"
	if got := app.ExtractKeywords(text, 5); len(got) != 5 {
		t.Fatalf("expected 5 keywords, got %v", got)
	}
	if got := app.ExtractKeywords(text, 0); len(got) != app.DefaultKeywordLimit {
		t.Fatalf("non-positive limit should use default, got %v", got)
	}
	if got := app.ExtractKeywords(text, 2); !cmp.Equal(got, []string{"alpha", "bravo"}) {
		t.Fatalf("ties must keep first-occurrence order, got %v", got)
	}
}

func TestClassifySentiment_Baseline(t *testing.T) {
	cases := []struct {
		rating float64
		want   domain.Sentiment
	}{
		{5, domain.SentimentPositive},
		{4, domain.SentimentPositive},
		{3.5, domain.SentimentNeutral},
		{3, domain.SentimentNeutral},
		{2.99, domain.SentimentNegative},
		{1, domain.SentimentNegative},
		{0, domain.SentimentNegative},
		{math.NaN(), domain.SentimentNegative},
		{math.Inf(1), domain.SentimentNegative},
	}
	for _, tc := range cases {
		if got := app.ClassifySentiment(tc.rating, ""); got != tc.want {
			t.Fatalf("ClassifySentiment(%v) = %s, want %s", tc.rating, got, tc.want)
		}
	}
}

func TestClassifySentiment_TextRefinesBoundary(t *testing.T) {
	cases := []struct {
		text string
		want domain.Sentiment
	}{
		{"The room was dirty and noisy", domain.SentimentNegative},
		{"Lovely, clean and comfortable", domain.SentimentPositive},
		{"Clean but noisy", domain.SentimentNeutral},
		{"It was a flat", domain.SentimentNeutral},
	}
	for _, tc := range cases {
		if got := app.ClassifySentiment(3.5, tc.text); got != tc.want {
			t.Fatalf("ClassifySentiment(3.5, %q) = %s, want %s", tc.text, got, tc.want)
		}
	}
	// outside the boundary band text is ignored
	if got := app.ClassifySentiment(4.5, "dirty dirty dirty"); got != domain.SentimentPositive {
		t.Fatalf("rating >= 4 must stay positive, got %s", got)
	}
	if got := app.ClassifySentiment(1, "perfect"); got != domain.SentimentNegative {
		t.Fatalf("rating < 3 must stay negative, got %s", got)
	}
}

func TestResolveListingID(t *testing.T) {
	cases := map[string]string{
		"2B N1 A - 29 Shoreditch Heights": "2B-N1-A",
		"1B E2 C - 12 Bethnal Green Road": "1B-E2-C",
		"Studio NW1 B":                    "Studio-NW1-B",
		"Loft - Camden Lock":              "Loft",
		"Garden Flat - Hackney":           "Garden-Flat",
		"Penthouse":                       "Penthouse",
		"Flat 3B, Camden Road":            "Flat-3B-Camden",
		"(2B) N1 A: Shoreditch":           "2B-N1-A",
		"O'Neil's Loft - Soho":            "O'Neil's-Loft",
		"  ":                              "",
		"":                                "",
	}
	for in, want := range cases {
		if got := app.ResolveListingID(in); got != want {
			t.Fatalf("ResolveListingID(%q) = %q, want %q", in, got, want)
		}
	}
	long := strings.Repeat("x", 500)
	if got := app.ResolveListingID(long); got != long {
		t.Fatalf("single-token names fall back to themselves")
	}
}
