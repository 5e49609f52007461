package dashboard

import (
	"context"
	"sync"

	"github.com/avolkov/catalog_insights/internal/domain"
)

// StatsFunc fetches the aggregation bundle for a filter. Client.Stats bound
// to an entity satisfies it.
type StatsFunc func(ctx context.Context, f FilterState) (*domain.Stats, error)

// Controller drives the analytics view. Each Apply cancels the in-flight
// fetch and starts a new one; responses carry the generation they were
// started under and are discarded if another Apply happened since. The
// filter state itself is last-write-wins, so the view always reflects the
// most recent selection even while a fetch is running.
type Controller struct {
	fetch StatsFunc

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	filters    FilterState
	stats      *domain.Stats
	err        error

	wg sync.WaitGroup
}

// NewController creates a controller over a fetch function.
func NewController(fetch StatsFunc) *Controller {
	return &Controller{fetch: fetch}
}

// NewStatsController binds a Controller to one entity of an API client.
func NewStatsController(c *Client, entity string) *Controller {
	return NewController(func(ctx context.Context, f FilterState) (*domain.Stats, error) {
		return c.Stats(ctx, entity, f)
	})
}

// Apply sets the filter selection and starts a fetch for it, cancelling any
// fetch still in flight. It returns immediately; the result lands in the
// snapshot when it arrives, unless a newer Apply superseded it.
func (c *Controller) Apply(f FilterState) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.filters = f.Clone()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer cancel()

		stats, err := c.fetch(ctx, f.Clone())

		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation {
			// a newer Apply superseded this fetch
			return
		}
		if err != nil {
			// keep the prior view-model, surface the error alongside it
			c.err = err
			return
		}
		c.stats = stats
		c.err = nil
	}()
}

// Snapshot returns the current view-model: the last successfully fetched
// stats (possibly stale if the latest fetch failed), the latest error, and
// the latest applied filter state.
func (c *Controller) Snapshot() (*domain.Stats, error, FilterState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats, c.err, c.filters.Clone()
}

// Wait blocks until every started fetch has settled. Intended for shutdown
// and tests.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels any in-flight fetch and waits for it to settle.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
}
