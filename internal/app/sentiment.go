package app

import (
	"math"
	"strings"
	"unicode"

	"review_dashboard/internal/domain"
)

var positiveLexicon = map[string]struct{}{
	"great": {}, "excellent": {}, "amazing": {}, "clean": {}, "wonderful": {}, "perfect": {},
	"lovely": {}, "fantastic": {}, "spotless": {}, "comfortable": {}, "recommend": {},
	"friendly": {}, "helpful": {}, "beautiful": {}, "cozy": {},
}

var negativeLexicon = map[string]struct{}{
	"dirty": {}, "noisy": {}, "broken": {}, "rude": {}, "smell": {}, "smelly": {},
	"disappointing": {}, "disappointed": {}, "terrible": {}, "awful": {}, "bad": {},
	"poor": {}, "uncomfortable": {}, "unclean": {}, "cold": {}, "mold": {},
}

// ClassifySentiment maps a 0..5 rating to a sentiment. In the [3,4) band the
// text is consulted; a one-sided lexicon hit decides, anything else stays neutral.
func ClassifySentiment(rating float64, text string) domain.Sentiment {
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		rating = 0
	}
	switch {
	case rating >= 4:
		return domain.SentimentPositive
	case rating < 3:
		return domain.SentimentNegative
	}

	var pos, neg int
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if _, ok := positiveLexicon[w]; ok {
			pos++
		}
		if _, ok := negativeLexicon[w]; ok {
			neg++
		}
	}
	switch {
	case neg > 0 && pos == 0:
		return domain.SentimentNegative
	case pos > 0 && neg == 0:
		return domain.SentimentPositive
	}
	return domain.SentimentNeutral
}
