package search

import (
	"context"
	"sort"
	"strings"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/log"
	"golang.org/x/sync/errgroup"
)

// Searcher issues a single upstream multi-type text search. Results may
// contain kinds other than movie and tv; the Aggregator filters them.
type Searcher interface {
	SearchMulti(ctx context.Context, query string) ([]catalog.Item, error)
}

// Enricher decorates ranked results, typically with provider labels.
type Enricher interface {
	Enrich(ctx context.Context, items []catalog.Item) []catalog.Item
}

// Aggregator runs the multi-query search pipeline described in the package
// documentation.
type Aggregator struct {
	searcher Searcher
	enricher Enricher
	logger   *log.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithEnricher runs e over the ranked results before they are returned.
func WithEnricher(e Enricher) Option {
	return func(a *Aggregator) {
		a.enricher = e
	}
}

// NewAggregator creates an aggregator backed by searcher.
func NewAggregator(searcher Searcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		searcher: searcher,
		logger:   log.ForService("search"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// scored is a ranking candidate; the score never leaves this package.
type scored struct {
	item  catalog.Item
	score float64
}

// Search returns the ranked, deduplicated results for query. It never
// fails: upstream errors degrade to fewer (or zero) results.
func (a *Aggregator) Search(ctx context.Context, query string) []catalog.Item {
	query = strings.TrimSpace(query)
	if query == "" {
		return []catalog.Item{}
	}

	queries := QuerySet(query)
	partials := a.fanOut(ctx, queries)

	seen := make(map[int]struct{})
	var candidates []scored
	for _, partial := range partials {
		for _, it := range partial {
			if !it.Kind.Valid() {
				continue
			}
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			candidates = append(candidates, scored{item: it, score: Score(it.Title, query)})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].item.ClampedRating() > candidates[j].item.ClampedRating()
	})

	results := make([]catalog.Item, len(candidates))
	for i, c := range candidates {
		results[i] = c.item
	}
	a.logger.Debugf("query %q: %d sub-queries, %d results", query, len(queries), len(results))

	if a.enricher != nil && len(results) > 0 {
		results = a.enricher.Enrich(ctx, results)
	}
	return results
}

// fanOut runs one search per query concurrently and returns the partial
// results in query order. Failed queries yield a nil slot.
func (a *Aggregator) fanOut(ctx context.Context, queries []string) [][]catalog.Item {
	partials := make([][]catalog.Item, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			items, err := a.searcher.SearchMulti(ctx, q)
			if err != nil {
				a.logger.Warnf("search error for query %q: %v", q, err)
				return nil
			}
			partials[i] = items
			return nil
		})
	}
	_ = g.Wait()

	return partials
}

// QuerySet returns the trimmed query followed by each of its words, with
// exact duplicates removed and first-seen order kept.
func QuerySet(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	words := strings.Fields(query)
	set := make([]string, 0, len(words)+1)
	seen := make(map[string]struct{}, len(words)+1)
	for _, q := range append([]string{query}, words...) {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		set = append(set, q)
	}
	return set
}
