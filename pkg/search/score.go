package search

import (
	"strings"
	"unicode/utf8"
)

// Relevance tiers.
const (
	ScoreExact      = 1000.0
	ScorePrefix     = 500.0
	ScoreContains   = 300.0
	ScoreAllWords   = 200.0
	ScoreAnyWord    = 100.0
	ScoreFuzzyScale = 50.0
)

// Score rates how well title matches query. Both are compared lower-cased;
// query is expected to be trimmed already.
func Score(title, query string) float64 {
	t := strings.ToLower(title)
	q := strings.ToLower(query)
	if q == "" {
		return 0
	}

	if t == q {
		return ScoreExact
	}
	if strings.HasPrefix(t, q) {
		return ScorePrefix
	}
	if strings.Contains(t, q) {
		return ScoreContains
	}

	queryWords := strings.Fields(q)
	titleWords := strings.Fields(t)

	matched := 0
	for _, qw := range queryWords {
		if wordMatches(qw, titleWords) {
			matched++
		}
	}
	if len(queryWords) > 0 && matched == len(queryWords) {
		return ScoreAllWords
	}
	if matched > 0 {
		return ScoreAnyWord
	}

	hits := 0
	for _, r := range q {
		if strings.ContainsRune(t, r) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	return float64(hits) / float64(utf8.RuneCountInString(q)) * ScoreFuzzyScale
}

func wordMatches(qw string, titleWords []string) bool {
	for _, tw := range titleWords {
		if strings.Contains(tw, qw) || strings.Contains(qw, tw) {
			return true
		}
	}
	return false
}
