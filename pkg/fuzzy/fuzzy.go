// Package fuzzy provides typo-tolerant matching for short free-text fields.
package fuzzy

import (
	"strings"
)

// LevenshteinDistance calculates the edit distance between two strings after
// normalisation: the number of single-rune insertions, deletions or
// substitutions needed to turn one into the other.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(normalizeString(s1))
	r2 := []rune(normalizeString(s2))
	m, n := len(r1), len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// two rolling rows of the DP matrix
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// Threshold is the edit distance tolerated for a query of this length.
func Threshold(query string) int {
	n := len([]rune(normalizeString(query)))
	switch {
	case n <= 3:
		return 1
	case n >= 8:
		return 3
	default:
		return 2
	}
}

// Score reports whether query matches text and how closely; lower is better.
// A substring hit scores 0, otherwise 1 + the smallest edit distance to any
// word, provided it is within Threshold.
func Score(query, text string) (int, bool) {
	query = normalizeString(query)
	text = normalizeString(text)
	if query == "" {
		return 0, false
	}

	if strings.Contains(text, query) {
		return 0, true
	}

	threshold := Threshold(query)
	best := -1
	for _, word := range strings.Fields(text) {
		if d := LevenshteinDistance(query, word); d <= threshold && (best < 0 || d+1 < best) {
			best = d + 1
		}
	}

	// multi-word queries against short texts
	if best < 0 && len(text) < 50 {
		if d := LevenshteinDistance(query, text); d <= threshold+len(query)/5 {
			best = d + 1
		}
	}

	return best, best >= 0
}

// FuzzyMatch checks if query fuzzy-matches text.
func FuzzyMatch(query, text string) bool {
	_, ok := Score(query, text)
	return ok
}

// normalizeString lowercases and collapses whitespace
func normalizeString(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
