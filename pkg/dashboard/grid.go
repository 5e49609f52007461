package dashboard

import (
	"context"
	"sync"

	"github.com/avolkov/catalog_insights/internal/domain"
)

// ListFunc fetches one page of a collection. Client.List bound to an entity
// satisfies it.
type ListFunc func(ctx context.Context, f FilterState, page, limit int) (*ListResult, error)

// Grid accumulates pages of an incremental list. The page cursor only moves
// forward: LoadMore requests the page after the last one appended, an
// in-progress flag serializes concurrent calls, and changing the filter
// resets the cursor and discards the accumulated items. A page that arrives
// after a filter change is dropped.
type Grid struct {
	fetch ListFunc
	limit int

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	filters    FilterState
	items      []*domain.Item
	page       int
	total      int64
	hasMore    bool
	fetching   bool
	err        error

	wg sync.WaitGroup
}

// NewGrid creates a grid over a fetch function. A non-positive limit defers
// to the server's default page size.
func NewGrid(fetch ListFunc, limit int) *Grid {
	return &Grid{
		fetch:   fetch,
		limit:   limit,
		hasMore: true,
	}
}

// NewListGrid binds a Grid to one entity of an API client.
func NewListGrid(c *Client, entity string, limit int) *Grid {
	return NewGrid(func(ctx context.Context, f FilterState, page, limit int) (*ListResult, error) {
		return c.List(ctx, entity, f, page, limit)
	}, limit)
}

// SetFilters replaces the filter selection: the accumulated items are
// discarded, the cursor returns to the first page and any in-flight page
// fetch is abandoned.
func (g *Grid) SetFilters(f FilterState) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.generation++
	g.filters = f.Clone()
	g.items = nil
	g.page = 0
	g.total = 0
	g.hasMore = true
	g.fetching = false
	g.err = nil
}

// LoadMore fetches the next page. It reports false without fetching when a
// page fetch is already in progress or the collection is exhausted.
func (g *Grid) LoadMore() bool {
	g.mu.Lock()
	if g.fetching || !g.hasMore {
		g.mu.Unlock()
		return false
	}

	g.fetching = true
	gen := g.generation
	nextPage := g.page + 1
	filters := g.filters.Clone()

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel

	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer cancel()

		result, err := g.fetch(ctx, filters, nextPage, g.limit)

		g.mu.Lock()
		defer g.mu.Unlock()
		if gen != g.generation {
			// the filter changed while this page was in flight
			return
		}
		g.fetching = false
		if err != nil {
			// cursor stays put so the same page can be retried
			g.err = err
			return
		}
		g.err = nil
		g.items = append(g.items, result.Items...)
		g.page = nextPage
		g.total = result.Meta.Total
		g.hasMore = result.Meta.HasMore
	}()

	return true
}

// Items returns a copy of the accumulated items.
func (g *Grid) Items() []*domain.Item {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*domain.Item, len(g.items))
	copy(out, g.items)
	return out
}

// Page returns the last page appended, 0 before the first load.
func (g *Grid) Page() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.page
}

// Total returns the server-reported total for the current filter.
func (g *Grid) Total() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.total
}

// HasMore reports whether another page exists.
func (g *Grid) HasMore() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hasMore
}

// Err returns the error of the last settled fetch, nil after a success.
func (g *Grid) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Wait blocks until every started page fetch has settled. Intended for
// shutdown and tests.
func (g *Grid) Wait() {
	g.wg.Wait()
}
