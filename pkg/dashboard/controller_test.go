package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/catalog_insights/internal/domain"
)

func statsFor(f FilterState) *domain.Stats {
	return &domain.Stats{TotalItems: int64(len(f.Search))}
}

func TestController_ApplyFetchesAndRenders(t *testing.T) {
	c := NewController(func(ctx context.Context, f FilterState) (*domain.Stats, error) {
		return &domain.Stats{TotalItems: 42}, nil
	})

	c.Apply(FilterState{Search: "laptop"})
	c.Wait()

	stats, err, filters := c.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(42), stats.TotalItems)
	assert.Equal(t, "laptop", filters.Search)
}

func TestController_RapidApplyRendersOnlyLatest(t *testing.T) {
	startedA := make(chan struct{})
	releaseA := make(chan struct{})

	c := NewController(func(ctx context.Context, f FilterState) (*domain.Stats, error) {
		if f.Search == "A" {
			close(startedA)
			// a slow response that ignores cancellation
			<-releaseA
		}
		return statsFor(f), nil
	})

	c.Apply(FilterState{Search: "A"})
	<-startedA
	c.Apply(FilterState{Search: "BB"})

	// A's response arrives after B superseded it
	close(releaseA)
	c.Wait()

	stats, err, filters := c.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(2), stats.TotalItems, "stale response must not overwrite the newer one")
	assert.Equal(t, "BB", filters.Search)
}

func TestController_ApplyCancelsInFlightFetch(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})

	c := NewController(func(ctx context.Context, f FilterState) (*domain.Stats, error) {
		if f.Search == "A" {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return statsFor(f), nil
	})

	c.Apply(FilterState{Search: "A"})
	<-started
	c.Apply(FilterState{Search: "B"})
	<-cancelled
	c.Wait()

	stats, err, _ := c.Snapshot()
	require.NoError(t, err, "the superseded fetch's cancellation error must be discarded")
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.TotalItems)
}

func TestController_FailureKeepsPriorViewModel(t *testing.T) {
	fetchErr := errors.New("connection refused")
	fail := false

	c := NewController(func(ctx context.Context, f FilterState) (*domain.Stats, error) {
		if fail {
			return nil, fetchErr
		}
		return &domain.Stats{TotalItems: 10}, nil
	})

	c.Apply(FilterState{Search: "first"})
	c.Wait()

	fail = true
	c.Apply(FilterState{Search: "second"})
	c.Wait()

	stats, err, filters := c.Snapshot()
	assert.ErrorIs(t, err, fetchErr)
	require.NotNil(t, stats, "a failed fetch must not blank the view")
	assert.Equal(t, int64(10), stats.TotalItems)
	assert.Equal(t, "second", filters.Search, "filter state is last-write-wins even on failure")
}

func TestController_SuccessClearsEarlierError(t *testing.T) {
	fail := true

	c := NewController(func(ctx context.Context, f FilterState) (*domain.Stats, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return &domain.Stats{TotalItems: 5}, nil
	})

	c.Apply(FilterState{})
	c.Wait()
	_, err, _ := c.Snapshot()
	require.Error(t, err)

	fail = false
	c.Apply(FilterState{})
	c.Wait()

	stats, err, _ := c.Snapshot()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalItems)
}
