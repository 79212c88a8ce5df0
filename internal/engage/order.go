package engage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/notifier"
	"github.com/campuslink/engage-core/internal/store/schema"
)

func orderEscrowToken(orderID string) string { return "order-escrow:" + orderID }
func orderPayoutToken(orderID string) string { return "order-settle:" + orderID + ":payout" }
func orderFeeToken(orderID string) string    { return "order-settle:" + orderID + ":fee" }
func orderRefundToken(orderID string) string { return "order-refund:" + orderID }

// OpenOrder creates a task order and moves its price from the owner into
// escrow. The order document is written first, so a crash between the two
// steps leaves an unfunded open order that reconciliation cancels; an owner
// without the funds gets the order cancelled immediately.
func (e *Engine) OpenOrder(ctx context.Context, ownerID, title string, price int64) (*schema.Order, error) {
	if ownerID == "" || title == "" {
		return nil, fmt.Errorf("owner and title are required: %w", domain.ErrInvalidInput)
	}
	if price <= 0 {
		return nil, fmt.Errorf("order price must be positive: %w", domain.ErrInvalidInput)
	}
	owner, err := e.store.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("owner %s: %w", ownerID, domain.ErrNotFound)
	}

	order := &schema.Order{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Title:        title,
		Price:        price,
		State:        domain.OrderOpen,
		EscrowAmount: price,
		CreatedAt:    e.clock.Now(),
		UpdatedAt:    e.clock.Now(),
	}

	unlock := e.orderLocks.Lock(orderLockKey(order.ID))
	defer unlock()

	if err := e.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	err = e.Transfer(ctx, TransferParams{
		From:            ownerID,
		To:              domain.AccountEscrow,
		Amount:          price,
		Asset:           domain.AssetCoin,
		Reason:          domain.ReasonOrderEscrow,
		RelatedEntityID: order.ID,
		Token:           orderEscrowToken(order.ID),
	})
	if err != nil {
		if ok, casErr := e.store.TransitionOrder(ctx, order.ID, domain.OrderOpen, domain.OrderCancelled, nil); casErr != nil || !ok {
			logger.ErrorCtx(ctx, casErr,
				zap.String("order_id", order.ID),
				zap.String("detail", "escrow failed and cancel transition did not apply; reconciliation will repair"),
			)
		}
		return nil, fmt.Errorf("failed to fund order escrow: %w", err)
	}
	return e.store.GetOrder(ctx, order.ID)
}

// GetOrder returns an order by ID
func (e *Engine) GetOrder(ctx context.Context, orderID string) (*schema.Order, error) {
	order, err := e.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	return order, nil
}

// ClaimOrder transitions an open order to claimed for the calling user. Of
// any number of concurrent claimants exactly one wins the compare-and-swap;
// the rest get ErrAlreadyClaimed. A repeated claim by the winner is a no-op
// success. An open order whose escrow debit has not reached the ledger cannot
// be claimed: until the money is reserved there is nothing to work for.
func (e *Engine) ClaimOrder(ctx context.Context, orderID, claimantID string) (*schema.Order, error) {
	if claimantID == "" {
		return nil, fmt.Errorf("claimant is required: %w", domain.ErrInvalidInput)
	}

	unlock := e.orderLocks.Lock(orderLockKey(orderID))
	defer unlock()

	order, err := e.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID == claimantID {
		return nil, fmt.Errorf("owner cannot claim their own order: %w", domain.ErrInvalidInput)
	}
	claimant, err := e.store.GetUser(ctx, claimantID)
	if err != nil {
		return nil, err
	}
	if claimant == nil {
		return nil, fmt.Errorf("claimant %s: %w", claimantID, domain.ErrNotFound)
	}

	switch order.State {
	case domain.OrderOpen:
		funded, err := e.orderFunded(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if !funded {
			return nil, fmt.Errorf("order %s escrow is not funded: %w", orderID, domain.ErrInvalidTransition)
		}
	case domain.OrderClaimed:
		if order.ClaimantID != nil && *order.ClaimantID == claimantID {
			return order, nil
		}
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrAlreadyClaimed)
	default:
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.State, domain.ErrInvalidTransition)
	}

	ok, err := e.store.TransitionOrder(ctx, orderID, domain.OrderOpen, domain.OrderClaimed, &claimantID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race: someone else moved the order first.
		current, err := e.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if current.State == domain.OrderClaimed && current.ClaimantID != nil && *current.ClaimantID == claimantID {
			return current, nil
		}
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrAlreadyClaimed)
	}

	e.notify(ctx, &notifier.Event{
		Kind:            domain.NotifyOrderClaimed,
		ToActorID:       order.OwnerID,
		FromActorID:     claimantID,
		RelatedEntityID: orderID,
		Content:         "claimed your order",
	})
	return e.GetOrder(ctx, orderID)
}

// SettleOrder pays a claimed order out: the claimant receives the escrow
// minus the platform fee, the fee account receives the rest, and the order
// becomes settled. Only the owner settles. The payout transfers run before
// the state transition and are token-idempotent, so a settle interrupted at
// any point can simply be called again; settling an already settled order
// replays the (spent) tokens and succeeds. The order lock serializes the
// state check, the payouts, and the transition against concurrent cancels;
// the CAS still guards writers in other processes.
func (e *Engine) SettleOrder(ctx context.Context, orderID, callerID string) (*schema.Order, error) {
	unlock := e.orderLocks.Lock(orderLockKey(orderID))
	defer unlock()

	order, err := e.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != callerID {
		return nil, fmt.Errorf("only the owner can settle: %w", domain.ErrInvalidInput)
	}

	switch order.State {
	case domain.OrderClaimed, domain.OrderSettled:
	default:
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.State, domain.ErrInvalidTransition)
	}
	if order.ClaimantID == nil {
		return nil, fmt.Errorf("order %s has no claimant: %w", orderID, domain.ErrInvalidTransition)
	}

	if err := e.settleTransfers(ctx, order); err != nil {
		return nil, err
	}

	if order.State == domain.OrderClaimed {
		ok, err := e.store.TransitionOrder(ctx, orderID, domain.OrderClaimed, domain.OrderSettled, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			current, err := e.GetOrder(ctx, orderID)
			if err != nil {
				return nil, err
			}
			if current.State != domain.OrderSettled {
				return nil, fmt.Errorf("order %s is %s: %w", orderID, current.State, domain.ErrInvalidTransition)
			}
			return current, nil
		}
		e.notify(ctx, &notifier.Event{
			Kind:            domain.NotifyOrderSettled,
			ToActorID:       *order.ClaimantID,
			FromActorID:     callerID,
			RelatedEntityID: orderID,
			Content:         "settled your claimed order",
		})
	}
	return e.GetOrder(ctx, orderID)
}

// settleFee returns the platform fee retained on an escrow amount
func (e *Engine) settleFee(escrow int64) int64 {
	return escrow * int64(e.cfg.FeeBasisPoints) / 10000
}

// settleTransfers moves the escrow to the claimant and the platform. Both
// transfers are keyed on the order ID, so replays are no-ops. An order whose
// escrow debit never reached the ledger must not pay out: that money belongs
// to other orders sharing the escrow account.
func (e *Engine) settleTransfers(ctx context.Context, order *schema.Order) error {
	funded, err := e.orderFunded(ctx, order.ID)
	if err != nil {
		return err
	}
	if !funded {
		return fmt.Errorf("order %s escrow was never funded: %w", order.ID, domain.ErrDriftDetected)
	}

	fee := e.settleFee(order.EscrowAmount)
	payout := order.EscrowAmount - fee

	if payout > 0 {
		err := e.Transfer(ctx, TransferParams{
			From:            domain.AccountEscrow,
			To:              *order.ClaimantID,
			Amount:          payout,
			Asset:           domain.AssetCoin,
			Reason:          domain.ReasonOrderIncome,
			RelatedEntityID: order.ID,
			Token:           orderPayoutToken(order.ID),
		})
		if err != nil {
			return fmt.Errorf("failed to pay out order %s: %w", order.ID, err)
		}
	}
	if fee > 0 {
		err := e.Transfer(ctx, TransferParams{
			From:            domain.AccountEscrow,
			To:              domain.AccountPlatform,
			Amount:          fee,
			Asset:           domain.AssetCoin,
			Reason:          domain.ReasonOrderFee,
			RelatedEntityID: order.ID,
			Token:           orderFeeToken(order.ID),
		})
		if err != nil {
			return fmt.Errorf("failed to collect fee for order %s: %w", order.ID, err)
		}
	}
	return nil
}

// CancelOrder cancels an open or claimed order and refunds the escrow to the
// owner. The owner cancels their own order; a claimed order additionally
// accepts cancellation by the claimant. When consent mode is on, the owner
// alone cannot cancel a claimed order. Cancelling a settled or already
// cancelled order is an invalid transition. The order lock keeps the cancel
// from interleaving with a settle of the same order.
func (e *Engine) CancelOrder(ctx context.Context, orderID, callerID string) (*schema.Order, error) {
	unlock := e.orderLocks.Lock(orderLockKey(orderID))
	defer unlock()

	order, err := e.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	isOwner := callerID == order.OwnerID
	isClaimant := order.ClaimantID != nil && *order.ClaimantID == callerID

	switch order.State {
	case domain.OrderOpen:
		if !isOwner {
			return nil, fmt.Errorf("only the owner can cancel an open order: %w", domain.ErrInvalidInput)
		}
	case domain.OrderClaimed:
		if !isOwner && !isClaimant {
			return nil, fmt.Errorf("only the owner or claimant can cancel: %w", domain.ErrInvalidInput)
		}
		if isOwner && e.cfg.ClaimedCancelNeedsConsent {
			return nil, fmt.Errorf("claimed order needs the claimant to cancel: %w", domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.State, domain.ErrInvalidTransition)
	}

	ok, err := e.store.TransitionOrder(ctx, orderID, order.State, domain.OrderCancelled, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := e.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("order %s is %s: %w", orderID, current.State, domain.ErrInvalidTransition)
	}

	if err := e.refundEscrow(ctx, order); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("order_id", orderID),
			zap.String("detail", "order cancelled but refund failed; reconciliation will repair"),
		)
	}

	if order.ClaimantID != nil {
		e.notify(ctx, &notifier.Event{
			Kind:            domain.NotifyOrderCancelled,
			ToActorID:       *order.ClaimantID,
			FromActorID:     callerID,
			RelatedEntityID: orderID,
			Content:         "cancelled the order you claimed",
		})
	}
	return e.GetOrder(ctx, orderID)
}

// orderFunded reports whether the order's escrow debit reached the ledger
func (e *Engine) orderFunded(ctx context.Context, orderID string) (bool, error) {
	entry, err := e.store.GetLedgerEntryByToken(ctx, orderEscrowToken(orderID)+":debit")
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

// settlementSpent reports whether any settlement half of the order already
// reached the ledger
func (e *Engine) settlementSpent(ctx context.Context, order *schema.Order) (bool, error) {
	for _, token := range []string{orderPayoutToken(order.ID), orderFeeToken(order.ID)} {
		entry, err := e.store.GetLedgerEntryByToken(ctx, token+":debit")
		if err != nil {
			return false, err
		}
		if entry != nil {
			return true, nil
		}
	}
	return false, nil
}

// refundEscrow returns the escrow of a cancelled order to its owner, but only
// when the escrow transfer actually landed; an unfunded order has nothing to
// refund.
func (e *Engine) refundEscrow(ctx context.Context, order *schema.Order) error {
	funded, err := e.orderFunded(ctx, order.ID)
	if err != nil {
		return err
	}
	if !funded {
		return nil
	}
	return e.Transfer(ctx, TransferParams{
		From:            domain.AccountEscrow,
		To:              order.OwnerID,
		Amount:          order.EscrowAmount,
		Asset:           domain.AssetCoin,
		Reason:          domain.ReasonRefund,
		RelatedEntityID: order.ID,
		Token:           orderRefundToken(order.ID),
	})
}
