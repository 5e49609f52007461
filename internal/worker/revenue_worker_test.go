package worker

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/avolkov/catalog_insights/internal/pkg/logger"
)

// fakeStore counts revenue recomputations and can fail a set number of times.
// A non-zero delay simulates a store that does not react to cancellation.
type fakeStore struct {
	mu       sync.Mutex
	calls    []string
	failures int
	delay    time.Duration
}

func (f *fakeStore) RecomputeRevenue(_ context.Context, id string) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if f.failures > 0 {
		f.failures--
		return assert.AnError
	}
	return nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func setupTestWorker(store *fakeStore) *RevenueWorker {
	log := logger.New("test")
	reconciler := NewReconciler(log)
	reconciler.Register("product", store)
	return NewRevenueWorker(reconciler, log)
}

func productEvent(itemID string, ts time.Time) []byte {
	data, _ := json.Marshal(CatalogEvent{
		EventID:   uuid.New(),
		EventType: "product.updated",
		Entity:    "product",
		ItemID:    itemID,
		Timestamp: ts,
	})
	return data
}

func TestRevenueWorker_HandleEvent_Success(t *testing.T) {
	store := &fakeStore{}
	worker := setupTestWorker(store)

	itemID := primitive.NewObjectID().Hex()

	err := worker.HandleEvent(productEvent(itemID, time.Now()))
	assert.NoError(t, err)

	// Verify pending update was scheduled
	assert.Equal(t, 1, worker.GetPendingCount())

	// Wait for debounce window + processing time
	time.Sleep(debounceWindow + 100*time.Millisecond)

	// Verify update was processed
	assert.Equal(t, 0, worker.GetPendingCount())
	assert.Equal(t, []string{itemID}, store.calls)
}

func TestRevenueWorker_HandleEvent_InvalidJSON(t *testing.T) {
	worker := setupTestWorker(&fakeStore{})

	err := worker.HandleEvent([]byte(`{invalid json}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}

func TestRevenueWorker_Debouncing_MultipleEvents(t *testing.T) {
	store := &fakeStore{}
	worker := setupTestWorker(store)

	itemID := primitive.NewObjectID().Hex()

	// Send 10 events for the same item within debounce window
	for i := 0; i < 10; i++ {
		err := worker.HandleEvent(productEvent(itemID, time.Now()))
		assert.NoError(t, err)
		time.Sleep(50 * time.Millisecond) // Within debounce window
	}

	// Should still have 1 pending update (debounced)
	assert.Equal(t, 1, worker.GetPendingCount())

	// Wait for debounce window + processing time
	time.Sleep(debounceWindow + 200*time.Millisecond)

	// Verify only one store update despite multiple events
	assert.Equal(t, 0, worker.GetPendingCount())
	assert.Equal(t, 1, store.callCount())
}

func TestRevenueWorker_EventOrdering_IgnoreStaleEvents(t *testing.T) {
	store := &fakeStore{}
	worker := setupTestWorker(store)

	itemID := primitive.NewObjectID().Hex()
	now := time.Now()

	// Send newer event first
	err := worker.HandleEvent(productEvent(itemID, now.Add(10*time.Second)))
	assert.NoError(t, err)

	// Send older event (should be ignored)
	err = worker.HandleEvent(productEvent(itemID, now))
	assert.NoError(t, err)

	// Should still have 1 pending update (stale event ignored)
	assert.Equal(t, 1, worker.GetPendingCount())

	// Wait for processing
	time.Sleep(debounceWindow + 200*time.Millisecond)

	// Verify only one update
	assert.Equal(t, 1, store.callCount())
}

func TestRevenueWorker_MultipleItems(t *testing.T) {
	store := &fakeStore{}
	worker := setupTestWorker(store)

	item1 := primitive.NewObjectID().Hex()
	item2 := primitive.NewObjectID().Hex()
	item3 := primitive.NewObjectID().Hex()

	// Send events for different items
	for _, itemID := range []string{item1, item2, item3} {
		err := worker.HandleEvent(productEvent(itemID, time.Now()))
		assert.NoError(t, err)
	}

	// Should have 3 pending updates
	assert.Equal(t, 3, worker.GetPendingCount())

	// Wait for processing
	time.Sleep(debounceWindow + 300*time.Millisecond)

	// Verify all updates executed
	assert.Equal(t, 0, worker.GetPendingCount())
	assert.ElementsMatch(t, []string{item1, item2, item3}, store.calls)
}

func TestRevenueWorker_GracefulShutdown(t *testing.T) {
	store := &fakeStore{}
	worker := setupTestWorker(store)

	itemID := primitive.NewObjectID().Hex()

	err := worker.HandleEvent(productEvent(itemID, time.Now()))
	assert.NoError(t, err)

	// Verify pending update
	assert.Equal(t, 1, worker.GetPendingCount())

	// Wait for processing to start
	time.Sleep(debounceWindow + 50*time.Millisecond)

	// Shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = worker.Shutdown(ctx)
	assert.NoError(t, err)

	// Verify clean shutdown
	assert.Equal(t, 0, worker.GetPendingCount())
	assert.Equal(t, 1, store.callCount())
}

func TestRevenueWorker_ShutdownCancelsPendingUpdates(t *testing.T) {
	store := &fakeStore{}
	worker := setupTestWorker(store)

	itemID := primitive.NewObjectID().Hex()

	err := worker.HandleEvent(productEvent(itemID, time.Now()))
	assert.NoError(t, err)

	// Verify pending update
	assert.Equal(t, 1, worker.GetPendingCount())

	// Shutdown immediately (before processing starts)
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err = worker.Shutdown(ctx)
	assert.NoError(t, err)

	// Verify pending update was cancelled
	assert.Equal(t, 0, worker.GetPendingCount())
	assert.Equal(t, 0, store.callCount())
}

func TestRevenueWorker_ShutdownTimeout(t *testing.T) {
	store := &fakeStore{delay: 10 * time.Second}
	worker := setupTestWorker(store)

	itemID := primitive.NewObjectID().Hex()

	err := worker.HandleEvent(productEvent(itemID, time.Now()))
	assert.NoError(t, err)

	// Wait for processing to start
	time.Sleep(debounceWindow + 50*time.Millisecond)

	// Shutdown with short timeout (should timeout)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = worker.Shutdown(ctx)
	assert.Error(t, err)
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestRevenueWorker_RetryLogic(t *testing.T) {
	// Simulate 2 failures then success
	store := &fakeStore{failures: 2}
	worker := setupTestWorker(store)

	itemID := primitive.NewObjectID().Hex()

	err := worker.HandleEvent(productEvent(itemID, time.Now()))
	assert.NoError(t, err)

	// Wait for processing with retries (debounce + 3 attempts with backoff)
	time.Sleep(debounceWindow + 1*time.Second)

	// Verify all retries executed
	assert.Equal(t, 3, store.callCount())
}
