// Package enrich attaches streaming provider labels to catalog titles.
//
// Lookups are issued in fixed-size batches: titles within a batch are looked
// up concurrently, batches run one after another with a short pause between
// them to stay friendly with the upstream rate limits. Results, including
// "no provider" answers and failures, are cached per (kind, id, region).
package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/rubiojr/cinegrid/pkg/catalog"
	"github.com/rubiojr/cinegrid/pkg/log"
	"golang.org/x/sync/errgroup"
)

// Defaults used when Config leaves values unset.
const (
	DefaultBatchSize  = 10
	DefaultBatchPause = 100 * time.Millisecond
	DefaultRegion     = "US"
)

// ProviderLookup resolves the primary provider label of one title. An empty
// label with a nil error means upstream lists no provider for the region.
type ProviderLookup interface {
	WatchProvider(ctx context.Context, kind catalog.Kind, id int, region string) (string, error)
}

// Config tunes an Enricher.
type Config struct {
	Region     string
	BatchSize  int
	BatchPause time.Duration
}

type cacheKey struct {
	key    catalog.Key
	region string
}

// Enricher sets Item.Platform from upstream watch-provider data.
type Enricher struct {
	lookup ProviderLookup
	logger *log.Logger

	mu    sync.RWMutex
	cfg   Config
	cache map[cacheKey]string
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Enricher.
func New(lookup ProviderLookup, cfg Config) *Enricher {
	return &Enricher{
		lookup: lookup,
		logger: log.ForService("enrich"),
		cfg:    normalize(cfg),
		cache:  make(map[cacheKey]string),
		sleep:  sleepContext,
	}
}

func normalize(cfg Config) Config {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchPause < 0 {
		cfg.BatchPause = 0
	}
	return cfg
}

// Configure swaps the settings and drops the cache when the region changes.
func (e *Enricher) Configure(cfg Config) {
	cfg = normalize(cfg)
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg.Region != e.cfg.Region {
		e.cache = make(map[cacheKey]string)
	}
	e.cfg = cfg
}

// Reset clears the lookup cache.
func (e *Enricher) Reset() {
	e.mu.Lock()
	e.cache = make(map[cacheKey]string)
	e.mu.Unlock()
}

// Region returns the configured watch region.
func (e *Enricher) Region() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.Region
}

// Enrich returns a copy of items with Platform filled in where a provider
// is known. The input slice is not modified.
func (e *Enricher) Enrich(ctx context.Context, items []catalog.Item) []catalog.Item {
	out := make([]catalog.Item, len(items))
	copy(out, items)

	e.mu.RLock()
	cfg := e.cfg
	e.mu.RUnlock()

	for start := 0; start < len(out); start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, len(out))

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				out[i].Platform = e.provider(ctx, out[i], cfg.Region)
				return nil
			})
		}
		_ = g.Wait()

		if end < len(out) {
			if err := e.sleep(ctx, cfg.BatchPause); err != nil {
				e.logger.Debugf("enrichment interrupted after %d of %d titles: %v", end, len(out), err)
				break
			}
		}
	}
	return out
}

// Provider resolves the label of a single title, using the cache.
func (e *Enricher) Provider(ctx context.Context, kind catalog.Kind, id int) string {
	return e.provider(ctx, catalog.Item{ID: id, Kind: kind}, e.Region())
}

func (e *Enricher) provider(ctx context.Context, it catalog.Item, region string) string {
	kind := it.Kind
	if !kind.Valid() {
		kind = catalog.KindMovie
	}
	key := cacheKey{key: catalog.Key{Kind: kind, ID: it.ID}, region: region}

	e.mu.RLock()
	label, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return label
	}

	label, err := e.lookup.WatchProvider(ctx, kind, it.ID, region)
	if err != nil {
		if ctx.Err() != nil {
			return ""
		}
		e.logger.Warnf("failed to fetch watch provider for %s %d: %v", kind, it.ID, err)
		label = ""
	}

	e.mu.Lock()
	e.cache[key] = label
	e.mu.Unlock()
	return label
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
