package search

import (
	"math"
	"testing"
)

func TestScoreTiers(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		query    string
		expected float64
	}{
		{"exact case-insensitive", "John Wick", "john wick", ScoreExact},
		{"prefix", "John Wick: Chapter 4", "john wick", ScorePrefix},
		{"substring", "The Matrix Reloaded", "matrix", ScoreContains},
		{"all words any order", "Wick, John", "john wick", ScoreAllWords},
		{"word containment either direction", "Spider-Man: Homecoming", "spider homecomings", ScoreAllWords},
		{"some word", "Wick Enterprises", "john wick", ScoreAnyWord},
		{"no overlap", "xyz", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.title, tt.query); got != tt.expected {
				t.Errorf("Score(%q, %q): expected %v, got %v", tt.title, tt.query, tt.expected, got)
			}
		})
	}
}

func TestScoreFuzzy(t *testing.T) {
	// "dnx": d and n appear in "Dune", x does not.
	got := Score("Dune", "dnx")
	want := 2.0 / 3.0 * ScoreFuzzyScale
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got <= 0 || got > ScoreFuzzyScale {
		t.Fatalf("fuzzy score out of range: %v", got)
	}
}

func TestExactDominatesLowerTiers(t *testing.T) {
	query := "alien"
	exact := Score("Alien", query)
	for _, title := range []string{"Aliens", "The Alien", "Alien Alien", "Alien: Romulus", "Lien"} {
		if s := Score(title, query); s >= exact {
			t.Errorf("%q scored %v, not below exact match %v", title, s, exact)
		}
	}
}
