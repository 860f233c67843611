package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rubiojr/cinegrid/pkg/catalog"
)

type browseCall struct {
	filter catalog.MediaFilter
	genre  int
	page   int
}

// fakeLoader serves numbered pages. pages[n] is the item count of page n;
// missing pages are empty.
type fakeLoader struct {
	mu       sync.Mutex
	pages    map[int]int
	search   []catalog.Item
	failPage int
	browses  []browseCall
	searches []string

	// block, when set, is waited on before a Browse returns.
	block chan struct{}
}

func (f *fakeLoader) Browse(ctx context.Context, filter catalog.MediaFilter, genre, page int) ([]catalog.Item, error) {
	f.mu.Lock()
	f.browses = append(f.browses, browseCall{filter, genre, page})
	n := f.pages[page]
	fail := f.failPage == page
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if fail {
		return nil, errors.New("upstream 500")
	}
	items := make([]catalog.Item, n)
	for i := range items {
		items[i] = catalog.Item{ID: page*100 + i, Title: fmt.Sprintf("%s p%d #%d", filter, page, i), Kind: catalog.KindMovie}
	}
	return items, nil
}

func (f *fakeLoader) Search(_ context.Context, query string) ([]catalog.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	return f.search, nil
}

func TestInitialState(t *testing.T) {
	c := New(&fakeLoader{})
	s := c.Snapshot()
	if s.Page != 1 || !s.HasMore || s.Loading || len(s.Items) != 0 || s.Filter != catalog.FilterAll {
		t.Fatalf("unexpected initial state %+v", s)
	}
	if !s.Layout().Bento() {
		t.Fatal("default listing should use the bento layout")
	}
}

func TestPagesAccumulate(t *testing.T) {
	l := &fakeLoader{pages: map[int]int{1: 20, 2: 20}}
	c := New(l)
	ctx := context.Background()

	c.Load(ctx)
	if !c.Trigger() {
		t.Fatal("trigger should advance after page 1")
	}
	r := c.Load(ctx)
	if r.Page != 2 || len(r.Items) != 20 || r.Stale {
		t.Fatalf("unexpected result %+v", r)
	}

	s := c.Snapshot()
	if len(s.Items) != 40 || s.Page != 2 || !s.HasMore {
		t.Fatalf("unexpected state after two pages: page=%d items=%d hasMore=%v", s.Page, len(s.Items), s.HasMore)
	}
}

func TestEmptyPageStopsPaging(t *testing.T) {
	l := &fakeLoader{pages: map[int]int{1: 20}}
	c := New(l)
	ctx := context.Background()

	c.Load(ctx)
	c.Trigger()
	c.Load(ctx)

	s := c.Snapshot()
	if s.HasMore {
		t.Fatal("expected hasMore=false after an empty page")
	}
	if len(s.Items) != 20 {
		t.Fatalf("expected items kept, got %d", len(s.Items))
	}
	if c.Trigger() {
		t.Fatal("trigger must not advance once hasMore is false")
	}
	if got := c.Snapshot().Page; got != 2 {
		t.Fatalf("page moved to %d", got)
	}
}

func TestFetchErrorIsEmptyPage(t *testing.T) {
	l := &fakeLoader{pages: map[int]int{1: 5, 2: 5}, failPage: 2}
	c := New(l)
	ctx := context.Background()

	c.Load(ctx)
	c.Trigger()
	r := c.Load(ctx)
	if r.Err == nil || len(r.Items) != 0 {
		t.Fatalf("expected error result with no items, got %+v", r)
	}
	if s := c.Snapshot(); s.HasMore || len(s.Items) != 5 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestTriggerIgnoredWhileLoading(t *testing.T) {
	l := &fakeLoader{pages: map[int]int{1: 3}, block: make(chan struct{})}
	c := New(l)

	done := make(chan Result)
	go func() { done <- c.Load(context.Background()) }()

	waitFor(t, func() bool { return c.Snapshot().Loading })
	if c.Trigger() {
		t.Fatal("trigger must be ignored while loading")
	}
	close(l.block)
	<-done

	if c.Snapshot().Page != 1 {
		t.Fatal("page should not have advanced")
	}
}

func TestTriggerWaitsForPendingLoad(t *testing.T) {
	l := &fakeLoader{pages: map[int]int{1: 20, 2: 20, 3: 20}}
	c := New(l)
	ctx := context.Background()

	c.Load(ctx)
	if !c.Trigger() {
		t.Fatal("first trigger should advance")
	}
	if c.Trigger() {
		t.Fatal("second trigger must wait for page 2 to load")
	}
	if s := c.Snapshot(); s.Page != 2 || !s.Loading {
		t.Fatalf("expected pending page 2, got page=%d loading=%v", s.Page, s.Loading)
	}

	r := c.Load(ctx)
	if r.Page != 2 || len(r.Items) != 20 {
		t.Fatalf("expected page 2 to be fetched, got %+v", r)
	}
	if !c.Trigger() || c.Snapshot().Page != 3 {
		t.Fatal("trigger should advance again once page 2 is applied")
	}
	for _, call := range l.browses {
		if call.page == 3 {
			t.Fatal("page 3 fetched before its Load")
		}
	}
}

func TestResetClearsPendingTrigger(t *testing.T) {
	l := &fakeLoader{pages: map[int]int{1: 20, 2: 20}}
	c := New(l)
	ctx := context.Background()

	c.Load(ctx)
	c.Trigger()
	c.SetGenre(18)
	if s := c.Snapshot(); s.Loading || s.Page != 1 {
		t.Fatalf("reset should drop the pending page, got %+v", s)
	}
	c.Load(ctx)
	if !c.Trigger() {
		t.Fatal("trigger should advance after reset")
	}
}

func TestFilterChangeResets(t *testing.T) {
	l := &fakeLoader{pages: map[int]int{1: 20, 2: 20}}
	c := New(l)
	ctx := context.Background()

	c.Load(ctx)
	c.Trigger()
	c.Load(ctx)
	gen := c.Snapshot().Generation

	if !c.SetFilter(catalog.FilterTV) {
		t.Fatal("expected change")
	}
	s := c.Snapshot()
	if len(s.Items) != 0 || s.Page != 1 || !s.HasMore || s.Generation == gen {
		t.Fatalf("expected reset state, got %+v", s)
	}
	if s.Layout().Bento() {
		t.Fatal("filtered listing must not use bento")
	}

	c.Load(ctx)
	last := l.browses[len(l.browses)-1]
	if last.filter != catalog.FilterTV || last.page != 1 {
		t.Fatalf("expected tv page 1, got %+v", last)
	}

	if c.SetFilter(catalog.FilterTV) {
		t.Fatal("same filter should not reset")
	}
	if !c.SetGenre(18) || c.Snapshot().Page != 1 {
		t.Fatal("genre change should reset")
	}
}

func TestStaleResultsAreDropped(t *testing.T) {
	l := &fakeLoader{pages: map[int]int{1: 20}, block: make(chan struct{})}
	c := New(l)

	done := make(chan Result)
	go func() { done <- c.Load(context.Background()) }()
	waitFor(t, func() bool { return c.Snapshot().Loading })

	c.SetFilter(catalog.FilterMovie)
	close(l.block)
	r := <-done

	if !r.Stale {
		t.Fatal("expected stale result")
	}
	s := c.Snapshot()
	if len(s.Items) != 0 || s.Filter != catalog.FilterMovie {
		t.Fatalf("stale page leaked into new generation: %+v", s)
	}
}

func TestSearchIsSinglePage(t *testing.T) {
	l := &fakeLoader{
		pages:  map[int]int{1: 20},
		search: []catalog.Item{{ID: 1, Title: "Dune", Kind: catalog.KindMovie}},
	}
	c := New(l)
	ctx := context.Background()

	c.SetFilter(catalog.FilterTV)
	c.SetGenre(18)
	if !c.SetQuery("  dune ") {
		t.Fatal("expected change")
	}
	s := c.Snapshot()
	if s.Query != "dune" || s.Filter != catalog.FilterAll || s.Genre != 0 {
		t.Fatalf("search should reset filters: %+v", s)
	}

	c.Load(ctx)
	s = c.Snapshot()
	if s.HasMore || len(s.Items) != 1 {
		t.Fatalf("expected one search page, got %+v", s)
	}
	if c.Trigger() {
		t.Fatal("search has no further pages")
	}
	if len(l.searches) != 1 || len(l.browses) != 0 {
		t.Fatalf("unexpected calls: searches=%v browses=%v", l.searches, l.browses)
	}
	if s.Layout().Bento() {
		t.Fatal("search must not use bento")
	}

	c.SetQuery("")
	if c.Snapshot().Query != "" || !c.Snapshot().HasMore {
		t.Fatal("clearing the query should go back to browsing")
	}
}

func TestSearchEmptyResultsStillSinglePage(t *testing.T) {
	c := New(&fakeLoader{})
	c.SetQuery("nothing")
	c.Load(context.Background())
	if s := c.Snapshot(); s.HasMore || len(s.Items) != 0 {
		t.Fatalf("unexpected state %+v", s)
	}
}

type stubLister struct{ items []catalog.Item }

func (s stubLister) Browse(context.Context, catalog.MediaFilter, int, int) ([]catalog.Item, error) {
	return s.items, nil
}

type countingEnricher struct{ calls int }

func (e *countingEnricher) Enrich(_ context.Context, items []catalog.Item) []catalog.Item {
	e.calls++
	return items
}

func TestSourceEnrichesFirstPageOnly(t *testing.T) {
	e := &countingEnricher{}
	src := NewSource(stubLister{items: []catalog.Item{{ID: 1, Kind: catalog.KindMovie}}}, nil, e)

	if _, err := src.Browse(context.Background(), catalog.FilterAll, 0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Browse(context.Background(), catalog.FilterAll, 0, 2); err != nil {
		t.Fatal(err)
	}
	if e.calls != 1 {
		t.Fatalf("expected one enrichment, got %d", e.calls)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met")
}
