package browse

import (
	"context"

	"github.com/rubiojr/cinegrid/pkg/catalog"
)

// Lister fetches one listing page from upstream.
type Lister interface {
	Browse(ctx context.Context, filter catalog.MediaFilter, genre, page int) ([]catalog.Item, error)
}

// Searcher runs an aggregated search.
type Searcher interface {
	Search(ctx context.Context, query string) []catalog.Item
}

// Enricher attaches provider labels.
type Enricher interface {
	Enrich(ctx context.Context, items []catalog.Item) []catalog.Item
}

// Source is the Loader used by the web UI, the API and the CLI. Provider
// labels are attached to the first listing page only; search results are
// enriched by the searcher itself.
type Source struct {
	lister   Lister
	searcher Searcher
	enricher Enricher
}

// NewSource builds a Source. enricher may be nil.
func NewSource(lister Lister, searcher Searcher, enricher Enricher) *Source {
	return &Source{lister: lister, searcher: searcher, enricher: enricher}
}

func (s *Source) Browse(ctx context.Context, filter catalog.MediaFilter, genre, page int) ([]catalog.Item, error) {
	items, err := s.lister.Browse(ctx, filter, genre, page)
	if err != nil {
		return nil, err
	}
	if page == 1 && len(items) > 0 && s.enricher != nil {
		items = s.enricher.Enrich(ctx, items)
	}
	return items, nil
}

func (s *Source) Search(ctx context.Context, query string) ([]catalog.Item, error) {
	return s.searcher.Search(ctx, query), nil
}
