package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/catalog_insights/internal/pkg/logger"
)

const (
	// Debounce window - collect events for same item within this duration
	debounceWindow = 1 * time.Second

	// Retry configuration
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
)

// CatalogEvent represents a catalog mutation event from NATS
type CatalogEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
	Entity    string    `json:"entity"`
	ItemID    string    `json:"item_id"`
	Timestamp time.Time `json:"timestamp"`
}

// RevenueWorker processes catalog events and reconciles item revenue
// asynchronously. The API writes revenue at creation time; partial updates
// may leave it stale until this worker catches up.
type RevenueWorker struct {
	reconciler *Reconciler
	logger     *logger.Logger

	// Debouncing state
	mu             sync.Mutex
	pendingUpdates map[string]*pendingUpdate
	shutdownCh     chan struct{}
	wg             sync.WaitGroup
	ctx            context.Context
	cancel         context.CancelFunc
}

type pendingUpdate struct {
	entity    string
	itemID    string
	timestamp time.Time
	timer     *time.Timer
}

// NewRevenueWorker creates a new revenue worker
func NewRevenueWorker(reconciler *Reconciler, logger *logger.Logger) *RevenueWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &RevenueWorker{
		reconciler:     reconciler,
		logger:         logger,
		pendingUpdates: make(map[string]*pendingUpdate),
		shutdownCh:     make(chan struct{}),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// HandleEvent processes a catalog event
func (w *RevenueWorker) HandleEvent(data []byte) error {
	var event CatalogEvent
	if err := json.Unmarshal(data, &event); err != nil {
		w.logger.WithFields(map[string]any{
			"error": err.Error(),
		}).Error("Failed to unmarshal catalog event", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	w.logger.WithFields(map[string]any{
		"type":      event.EventType,
		"entity":    event.Entity,
		"item_id":   event.ItemID,
		"timestamp": event.Timestamp,
	}).Info("Received catalog event")

	// Schedule revenue reconciliation with debouncing
	w.scheduleUpdate(event.Entity, event.ItemID, event.Timestamp)

	return nil
}

// scheduleUpdate implements debouncing logic
// Multiple events for same item within debounce window result in single store update
func (w *RevenueWorker) scheduleUpdate(entity, itemID string, timestamp time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Check if already shutting down
	select {
	case <-w.shutdownCh:
		w.logger.Info("Worker shutting down, ignoring new event")
		return
	default:
	}

	existing, found := w.pendingUpdates[itemID]

	// If we have a pending update, check if this event is newer
	if found {
		// Ignore stale events
		if timestamp.Before(existing.timestamp) {
			w.logger.WithFields(map[string]any{
				"item_id":     itemID,
				"existing_ts": existing.timestamp,
				"event_ts":    timestamp,
			}).Debug("Ignoring stale event")
			return
		}

		// Cancel existing timer (we'll create a new one)
		existing.timer.Stop()
		w.logger.WithFields(map[string]any{
			"item_id": itemID,
		}).Debug("Debouncing: resetting timer for item")
	} else {
		// New item, increment wait group
		w.wg.Add(1)
	}

	// Create new timer for debounced update
	timer := time.AfterFunc(debounceWindow, func() {
		w.processUpdate(entity, itemID)
	})

	w.pendingUpdates[itemID] = &pendingUpdate{
		entity:    entity,
		itemID:    itemID,
		timestamp: timestamp,
		timer:     timer,
	}
}

// processUpdate executes the revenue reconciliation with retry logic
func (w *RevenueWorker) processUpdate(entity, itemID string) {
	defer w.wg.Done()

	w.mu.Lock()
	delete(w.pendingUpdates, itemID)
	w.mu.Unlock()

	w.logger.WithFields(map[string]any{
		"entity":  entity,
		"item_id": itemID,
	}).Info("Processing revenue update")

	// Retry loop with exponential backoff
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.WithFields(map[string]any{
				"item_id":    itemID,
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying revenue update")

			select {
			case <-time.After(backoff):
				// Continue with retry
			case <-w.ctx.Done():
				w.logger.Info("Worker context cancelled, aborting retry")
				return
			}

			backoff *= 2
		}

		// Create context with timeout for each attempt
		ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
		err := w.reconciler.Reconcile(ctx, entity, itemID)
		cancel()

		if err == nil {
			return
		}

		lastErr = err
		w.logger.WithFields(map[string]any{
			"item_id": itemID,
			"attempt": attempt + 1,
			"error":   err.Error(),
		}).Error("Failed to update revenue", err)
	}

	// All retries exhausted
	w.logger.WithFields(map[string]any{
		"item_id":     itemID,
		"max_retries": maxRetries,
		"error":       lastErr.Error(),
	}).Error("Revenue update failed after all retries", lastErr)
}

// Shutdown gracefully shuts down the worker
// Cancels pending timers and waits for in-flight updates to complete
func (w *RevenueWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down revenue worker...")

	// Signal shutdown to prevent new updates
	close(w.shutdownCh)

	// Cancel context to stop retries
	w.cancel()

	// Cancel all pending timers
	w.mu.Lock()
	pendingCount := len(w.pendingUpdates)
	for _, update := range w.pendingUpdates {
		update.timer.Stop()
		w.wg.Done() // Decrement counter for cancelled updates
	}
	w.pendingUpdates = make(map[string]*pendingUpdate)
	w.mu.Unlock()

	w.logger.WithFields(map[string]any{
		"cancelled_updates": pendingCount,
	}).Info("Cancelled pending updates")

	// Wait for in-flight updates to complete or context timeout
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("All in-flight updates completed")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// GetPendingCount returns the number of pending updates (used for monitoring/testing)
func (w *RevenueWorker) GetPendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pendingUpdates)
}
