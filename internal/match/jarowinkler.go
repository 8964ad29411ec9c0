// Package match implements fuzzy entity resolution for the family roster:
// string-similarity scoring, a confidence-tiered resolution cascade for
// person and task mentions, and pairwise duplicate detection.
//
// The package is pure computation. No operation performs I/O, and absence of
// a match is a successful zero-confidence result, never an error. The only
// mutable state is the bounded alias cache inside Resolver.
package match

// winklerPrefixCap is the fixed maximum common-prefix length rewarded by the
// Winkler boost. Standard Jaro-Winkler uses 4; this is not configurable.
const winklerPrefixCap = 4

// winklerScale is the standard Jaro-Winkler prefix scaling factor.
const winklerScale = 0.1

// Similarity returns the Jaro-Winkler similarity of two strings in [0, 1].
//
// Identical strings score exactly 1.0 (checked before anything else, which
// also keeps empty-vs-empty out of the division paths). If either string is
// empty the score is 0. Matching is windowed and greedy: each character of s1
// claims the first unused equal character of s2 within the Jaro window,
// scanning left to right. Greedy claiming (rather than optimal assignment)
// must be preserved so scores stay reproducible.
func Similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	len1, len2 := len(r1), len(r2)
	if len1 == 0 || len2 == 0 {
		return 0.0
	}

	window := max(len1, len2)/2 - 1
	if window < 0 {
		window = 0
	}

	matched1 := make([]bool, len1)
	matched2 := make([]bool, len2)

	matches := 0
	for i := 0; i < len1; i++ {
		start := i - window
		if start < 0 {
			start = 0
		}
		end := i + window + 1
		if end > len2 {
			end = len2
		}
		for j := start; j < end; j++ {
			if matched2[j] || r1[i] != r2[j] {
				continue
			}
			matched1[i] = true
			matched2[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	// Count transpositions over the matched subsequences: walk matched
	// characters of both strings in order and count position-wise mismatches,
	// halved per the standard Jaro definition.
	rawTranspositions := 0
	k := 0
	for i := 0; i < len1; i++ {
		if !matched1[i] {
			continue
		}
		for !matched2[k] {
			k++
		}
		if r1[i] != r2[k] {
			rawTranspositions++
		}
		k++
	}
	transpositions := float64(rawTranspositions) / 2.0

	m := float64(matches)
	jaro := (m/float64(len1) + m/float64(len2) + (m-transpositions)/m) / 3.0

	// Winkler boost: reward a shared prefix of up to 4 characters. The boost
	// interpolates toward 1, so the result stays within [0, 1].
	prefix := 0
	limit := min(len1, len2)
	if limit > winklerPrefixCap {
		limit = winklerPrefixCap
	}
	for i := 0; i < limit; i++ {
		if r1[i] != r2[i] {
			break
		}
		prefix++
	}

	return jaro + float64(prefix)*winklerScale*(1.0-jaro)
}
