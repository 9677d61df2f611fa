// Package textmatch implements the fuzzy string comparison underlying every
// field-level validation check.
package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiSpace = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

// foldDiacritics decomposes to NFD and drops combining marks, so "Hermès"
// and "Hermes" normalize identically.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, trims, collapses whitespace and strips diacritics.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = multiSpace.Replace(s)
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// Similarity returns a deterministic fuzzy match score in [0,1] for two
// strings. Exact match after normalization scores 1.0; substring containment
// scores the length ratio of the shorter to the longer string; anything else
// falls back to normalized Levenshtein distance. Either side empty after
// normalization scores 0.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		shorter, longer := len(nb), len(na)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return float64(shorter) / float64(longer)
	}

	dist := levenshtein(na, nb)
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}
	return 1.0 - float64(dist)/float64(maxLen)
}

// ContainsNormalized reports whether needle appears as a substring of
// haystack after both sides are normalized.
func ContainsNormalized(haystack, needle string) bool {
	h, n := Normalize(haystack), Normalize(needle)
	if h == "" || n == "" {
		return false
	}
	return strings.Contains(h, n)
}

// FirstToken returns the first whitespace-delimited token of s after
// normalization, or "" when s is empty. Used to guess a brand from a listing
// title when the structured brand attribute is missing.
func FirstToken(s string) string {
	fields := strings.Fields(Normalize(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// levenshtein computes the edit distance between two strings using a
// two-row rolling matrix. Inputs are identifier-length (tens of chars), so
// O(len(a)*len(b)) is acceptable.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
