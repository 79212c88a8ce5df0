package engage

import (
	"context"
	"fmt"

	"github.com/campuslink/engage-core/internal/domain"
)

// applyDelta moves a denormalized counter by a signed amount, retrying
// transient store failures. Count-like fields clamp at zero in the store.
func (e *Engine) applyDelta(ctx context.Context, entity domain.EntityKind, id string, field domain.CounterField, delta int64) error {
	if delta == 0 {
		return nil
	}
	err := e.withRetry(ctx, func() error {
		return e.store.AddToCounter(ctx, entity, id, field, delta)
	})
	if err != nil {
		return fmt.Errorf("failed to apply %s delta to %s %s: %w", field, entity, id, err)
	}
	return nil
}

// overwriteCounter sets a counter to an absolute value. Only reconciliation
// calls this; request paths always go through signed deltas.
func (e *Engine) overwriteCounter(ctx context.Context, entity domain.EntityKind, id string, field domain.CounterField, value int64) error {
	err := e.withRetry(ctx, func() error {
		return e.store.SetCounter(ctx, entity, id, field, value)
	})
	if err != nil {
		return fmt.Errorf("failed to overwrite %s on %s %s: %w", field, entity, id, err)
	}
	return nil
}
