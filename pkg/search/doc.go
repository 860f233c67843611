// Package search implements the cinegrid relevance engine: it turns one free
// text query into a deduplicated, relevance-ranked list of catalog titles.
//
// # Overview
//
// The upstream multi-search endpoint matches whole phrases poorly, so the
// Aggregator fans a query out into several sub-queries (the full phrase plus
// each individual word), runs them concurrently, and merges the partial
// results into one ranked list.
//
// # Pipeline
//
//  1. Build the query set: the trimmed query followed by each whitespace
//     delimited word, exact duplicates removed.
//  2. Issue one upstream search per query concurrently and wait for all of
//     them. A failing sub-query contributes nothing; the others still count.
//  3. Concatenate partial results in query-set order and drop anything that
//     is neither a movie nor a series (people, collections).
//  4. Deduplicate by upstream id; the first occurrence wins, so full-phrase
//     hits beat single-word hits.
//  5. Score each candidate against the original query with Score.
//  6. Stable sort by score, then rating, both descending.
//
// # Scoring tiers
//
// Score is evaluated case-insensitively and the first matching tier wins:
//
//	exact title match                         1000
//	title starts with query                    500
//	title contains query                       300
//	every query word matches some title word   200
//	some query word matches some title word    100
//	fuzzy: matching query characters / len * 50  0..50
//
// Word matching is substring containment in either direction.
//
// # Parameters
//
// ParseParams converts HTTP query strings (q, type, genre, page) into Params
// shared by the JSON API and the web UI.
package search
