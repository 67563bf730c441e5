package app

import (
	"strings"
	"unicode"
)

// ResolveListingID derives the canonical listing id from a listing name,
// e.g. "2B N1 A - 29 Shoreditch Heights" -> "2B-N1-A".
// Leading and trailing punctuation is dropped from each word, so
// "Flat 3B, Camden Road" -> "Flat-3B-Camden". Names without a three-word code
// fall back to the words before " - ".
func ResolveListingID(name string) string {
	name = strings.TrimSpace(name)
	if words := strings.Fields(name); len(words) >= 3 {
		code := make([]string, 0, 3)
		for _, w := range words[:3] {
			w = trimPunct(w)
			if w == "" || strings.IndexFunc(w, notLetterOrDigit) >= 0 {
				break
			}
			code = append(code, w)
		}
		if len(code) == 3 {
			return strings.Join(code, "-")
		}
	}

	head := name
	if i := strings.Index(name, " - "); i >= 0 {
		head = name[:i]
	}
	var parts []string
	for _, w := range strings.Fields(head) {
		if w = trimPunct(w); w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, "-")
}

func trimPunct(w string) string {
	return strings.TrimFunc(w, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
}

func notLetterOrDigit(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }
