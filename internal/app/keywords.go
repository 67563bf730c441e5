package app

import (
	"sort"
	"strings"
	"unicode"
)

const DefaultKeywordLimit = 5

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "to": {}, "in": {}, "a": {}, "for": {}, "is": {}, "on": {}, "with": {}, "as": {},
	"by": {}, "at": {}, "from": {}, "that": {}, "this": {}, "it": {}, "an": {}, "be": {}, "or": {}, "are": {}, "was": {},
	"will": {}, "has": {}, "have": {}, "had": {}, "but": {}, "not": {}, "your": {}, "you": {}, "we": {}, "our": {},
	"were": {}, "they": {}, "them": {}, "their": {}, "there": {}, "here": {}, "very": {}, "would": {}, "could": {},
	"should": {}, "been": {}, "also": {}, "just": {}, "really": {}, "which": {}, "when": {}, "what": {}, "than": {},
	"then": {}, "into": {}, "over": {}, "only": {}, "some": {}, "more": {}, "much": {}, "such": {}, "about": {},
	"again": {}, "stay": {}, "stayed": {}, "place": {}, "guest": {}, "guests": {}, "host": {},
}

// ExtractKeywords returns up to limit keywords ranked by frequency.
// Ties keep first-occurrence order.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}
	clean := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, text)

	freq := map[string]int{}
	var order []string
	for _, w := range strings.Fields(clean) {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool { return freq[order[i]] > freq[order[j]] })
	if len(order) > limit {
		order = order[:limit]
	}
	out := make([]string, len(order))
	copy(out, order)
	return out
}
