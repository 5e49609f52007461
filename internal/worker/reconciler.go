package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkov/catalog_insights/internal/domain"
	"github.com/avolkov/catalog_insights/internal/pkg/logger"
)

// RevenueRecomputer recomputes the stored revenue measure for one item
type RevenueRecomputer interface {
	RecomputeRevenue(ctx context.Context, id string) error
}

// Reconciler routes reconciliation requests to the store of the right
// collection. Only commerce collections register a store; events for other
// entities are skipped.
type Reconciler struct {
	stores map[string]RevenueRecomputer
	logger *logger.Logger
}

// NewReconciler creates a new revenue reconciler
func NewReconciler(log *logger.Logger) *Reconciler {
	return &Reconciler{
		stores: make(map[string]RevenueRecomputer),
		logger: log,
	}
}

// Register binds an entity name to its store
func (r *Reconciler) Register(entity string, store RevenueRecomputer) {
	r.stores[entity] = store
}

// Reconcile recomputes revenue from the current price and sold values
// Uses full recomputation for simplicity and self-correction
func (r *Reconciler) Reconcile(ctx context.Context, entity, itemID string) error {
	store, ok := r.stores[entity]
	if !ok {
		r.logger.WithFields(map[string]any{
			"entity":  entity,
			"item_id": itemID,
		}).Debug("No revenue store for entity, skipping")
		return nil
	}

	err := store.RecomputeRevenue(ctx, itemID)

	// Item deleted since the event was published - not an error, just log
	if errors.Is(err, domain.ErrNotFound) {
		r.logger.WithFields(map[string]any{
			"entity":  entity,
			"item_id": itemID,
		}).Info("Item not found, skipping revenue update")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to recompute revenue: %w", err)
	}

	r.logger.WithFields(map[string]any{
		"entity":  entity,
		"item_id": itemID,
	}).Info("Successfully reconciled item revenue")

	return nil
}
