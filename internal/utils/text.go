package utils

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes s for case-insensitive comparison.
// NFKC first so that full-width Latin letters match their ASCII forms.
func Fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// ContainsFold reports whether needle occurs in haystack ignoring case and width
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// ClosestMatch returns the candidate with the smallest edit distance to query.
// Candidates further than a third of the query length (minimum 2) are ignored.
func ClosestMatch(query string, candidates []string) (string, bool) {
	q := Fold(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}

	maxDistance := len([]rune(q)) / 3
	if maxDistance < 2 {
		maxDistance = 2
	}

	best := ""
	bestDistance := maxDistance + 1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(q, Fold(c))
		if d < bestDistance {
			best = c
			bestDistance = d
		}
	}

	return best, best != ""
}
