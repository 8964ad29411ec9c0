package match

import "strings"

// keywordStopWords filters common English words that add noise to keyword
// overlap scoring.
var keywordStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true,
}

// minKeywordLength drops tokens too short to carry signal.
const minKeywordLength = 3

// ExtractKeywords tokenizes free text into a set of normalized keywords:
// lowercased, stripped of everything outside [a-z0-9], with short tokens and
// stop words removed.
func ExtractKeywords(text string) map[string]bool {
	keywords := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		var b strings.Builder
		for _, r := range token {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		word := b.String()
		if len(word) < minKeywordLength || keywordStopWords[word] {
			continue
		}
		keywords[word] = true
	}
	return keywords
}

// KeywordOverlap returns the Jaccard similarity of two keyword sets:
// |intersection| / |union|, or 0 if either set is empty.
func KeywordOverlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for word := range a {
		if b[word] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
