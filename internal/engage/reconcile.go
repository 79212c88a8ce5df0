package engage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/store/schema"
)

// toggleCountField maps a toggle kind to the target-side counter it drives
func toggleCountField(kind domain.ToggleKind) domain.CounterField {
	switch kind {
	case domain.ToggleLikePost, domain.ToggleLikeComment:
		return domain.FieldLikeCount
	case domain.ToggleCollectPost:
		return domain.FieldCollectCount
	case domain.ToggleFollowUser:
		return domain.FieldFollowerCount
	}
	return ""
}

// ReconcileToggleCounter recomputes a target's toggle-driven counter from the
// live toggle records and overwrites the stored value when it drifted.
// Returns whether a drift was repaired.
func (e *Engine) ReconcileToggleCounter(ctx context.Context, targetID string, kind domain.ToggleKind) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("unknown toggle kind %q: %w", kind, domain.ErrInvalidInput)
	}
	truth, err := e.store.CountTogglesForTarget(ctx, targetID, kind)
	if err != nil {
		return false, err
	}

	entity := kind.TargetEntity()
	field := toggleCountField(kind)
	stored, err := e.readCounter(ctx, entity, targetID, field)
	if err != nil {
		return false, err
	}
	if stored == truth {
		return false, nil
	}

	if err := e.overwriteCounter(ctx, entity, targetID, field, truth); err != nil {
		return false, err
	}
	logger.WarnCtx(ctx, "Repaired counter drift",
		zap.String("entity", string(entity)),
		zap.String("target_id", targetID),
		zap.String("field", string(field)),
		zap.Int64("stored", stored),
		zap.Int64("derived", truth),
	)
	return true, nil
}

// ReconcileFollowing recomputes an actor's following count from the live
// follow toggles they set
func (e *Engine) ReconcileFollowing(ctx context.Context, actorID string) (bool, error) {
	truth, err := e.store.CountTogglesByActor(ctx, actorID, domain.ToggleFollowUser)
	if err != nil {
		return false, err
	}
	stored, err := e.readCounter(ctx, domain.EntityUser, actorID, domain.FieldFollowingCount)
	if err != nil {
		return false, err
	}
	if stored == truth {
		return false, nil
	}
	if err := e.overwriteCounter(ctx, domain.EntityUser, actorID, domain.FieldFollowingCount, truth); err != nil {
		return false, err
	}
	logger.WarnCtx(ctx, "Repaired following count drift",
		zap.String("actor_id", actorID),
		zap.Int64("stored", stored),
		zap.Int64("derived", truth),
	)
	return true, nil
}

// ReconcileAccount recomputes an account's stored balances from the ledger
// and overwrites any that drifted. The ledger is the source of truth; stored
// balances are only a cache of it. Returns whether a drift was repaired.
func (e *Engine) ReconcileAccount(ctx context.Context, accountID string) (bool, error) {
	user, err := e.store.GetUser(ctx, accountID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}

	unlock := e.locks.Lock(accountLockKey(accountID))
	defer unlock()

	repaired := false
	for _, asset := range []domain.Asset{domain.AssetCoin, domain.AssetExperience} {
		truth, err := e.store.SumLedger(ctx, accountID, asset)
		if err != nil {
			return repaired, err
		}
		stored, err := e.readCounter(ctx, domain.EntityUser, accountID, assetField(asset))
		if err != nil {
			return repaired, err
		}
		if stored == truth {
			continue
		}

		logger.ErrorCtx(ctx, fmt.Errorf("account %s %s: stored %d, ledger %d: %w",
			accountID, asset, stored, truth, domain.ErrDriftDetected))
		if err := e.overwriteCounter(ctx, domain.EntityUser, accountID, assetField(asset), truth); err != nil {
			return repaired, err
		}
		repaired = true
	}
	return repaired, nil
}

// ReconcileOrder repairs an order whose money movement was interrupted:
// settled orders get missing payout halves replayed, cancelled orders get
// their refund replayed, and open or claimed orders that never got funded
// within the grace window are cancelled. Every replayed transfer is
// token-keyed, so reconciling a healthy order changes nothing. The order lock
// keeps the repair from interleaving with a live transition of the same
// order.
func (e *Engine) ReconcileOrder(ctx context.Context, orderID string) error {
	unlock := e.orderLocks.Lock(orderLockKey(orderID))
	defer unlock()

	order, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}

	switch order.State {
	case domain.OrderOpen, domain.OrderClaimed:
		return e.reconcileUnfundedOrder(ctx, order)
	case domain.OrderSettled:
		if order.ClaimantID == nil {
			return fmt.Errorf("settled order %s has no claimant: %w", orderID, domain.ErrDriftDetected)
		}
		return e.settleTransfers(ctx, order)
	case domain.OrderCancelled:
		// A cancelled order with settlement entries on the ledger was paid out
		// and refunded; replaying the refund would double the damage, so it is
		// flagged instead.
		spent, err := e.settlementSpent(ctx, order)
		if err != nil {
			return err
		}
		if spent {
			return fmt.Errorf("cancelled order %s has settlement entries on the ledger: %w", orderID, domain.ErrDriftDetected)
		}
		return e.refundEscrow(ctx, order)
	}
	return fmt.Errorf("order %s has unknown state %q: %w", orderID, order.State, domain.ErrDriftDetected)
}

// reconcileUnfundedOrder cancels open or claimed orders whose escrow never
// landed. Fresh orders are left alone: their opening request may still be in
// flight. No refund follows the cancel; there is nothing to give back.
func (e *Engine) reconcileUnfundedOrder(ctx context.Context, order *schema.Order) error {
	funded, err := e.orderFunded(ctx, order.ID)
	if err != nil {
		return err
	}
	if funded {
		return nil
	}
	if e.clock.Since(order.CreatedAt) < e.cfg.UnfundedOrderGrace {
		return nil
	}

	ok, err := e.store.TransitionOrder(ctx, order.ID, order.State, domain.OrderCancelled, nil)
	if err != nil {
		return err
	}
	if ok {
		logger.WarnCtx(ctx, "Cancelled unfunded order",
			zap.String("order_id", order.ID),
			zap.String("owner_id", order.OwnerID),
			zap.String("state", string(order.State)),
		)
	}
	return nil
}

// readCounter reads the current stored value of one counter field
func (e *Engine) readCounter(ctx context.Context, entity domain.EntityKind, id string, field domain.CounterField) (int64, error) {
	switch entity {
	case domain.EntityUser:
		user, err := e.store.GetUser(ctx, id)
		if err != nil {
			return 0, err
		}
		if user == nil {
			return 0, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		switch field {
		case domain.FieldPostCount:
			return user.PostCount, nil
		case domain.FieldLikeCount:
			return user.LikeCount, nil
		case domain.FieldFollowerCount:
			return user.FollowerCount, nil
		case domain.FieldFollowingCount:
			return user.FollowingCount, nil
		case domain.FieldCoinBalance:
			return user.CoinBalance, nil
		case domain.FieldExperience:
			return user.Experience, nil
		}
	case domain.EntityPost:
		post, err := e.store.GetPost(ctx, id)
		if err != nil {
			return 0, err
		}
		if post == nil {
			return 0, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
		}
		switch field {
		case domain.FieldLikeCount:
			return post.LikeCount, nil
		case domain.FieldCommentCount:
			return post.CommentCount, nil
		case domain.FieldCollectCount:
			return post.CollectCount, nil
		case domain.FieldViewCount:
			return post.ViewCount, nil
		}
	case domain.EntityComment:
		comment, err := e.store.GetComment(ctx, id)
		if err != nil {
			return 0, err
		}
		if comment == nil {
			return 0, fmt.Errorf("comment %s: %w", id, domain.ErrNotFound)
		}
		if field == domain.FieldLikeCount {
			return comment.LikeCount, nil
		}
	}
	return 0, fmt.Errorf("no %s field on %s: %w", field, entity, domain.ErrInvalidInput)
}
