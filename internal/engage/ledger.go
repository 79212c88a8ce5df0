package engage

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/store/schema"
)

// TransferParams describes a balance movement. Leaving From empty mints the
// amount (system grants like daily login); both halves of a two-sided transfer
// derive their idempotency tokens from Token, so retrying the whole transfer
// is safe at any point.
type TransferParams struct {
	From            string
	To              string
	Amount          int64
	Asset           domain.Asset
	Reason          domain.LedgerReason
	RelatedEntityID string
	Token           string
}

func assetField(asset domain.Asset) domain.CounterField {
	if asset == domain.AssetExperience {
		return domain.FieldExperience
	}
	return domain.FieldCoinBalance
}

func storedBalance(user *schema.User, asset domain.Asset) int64 {
	if asset == domain.AssetExperience {
		return user.Experience
	}
	return user.CoinBalance
}

// Transfer moves Amount of Asset from one account to another through the
// append-only ledger. The debit half is written before the credit half; a
// crash between them leaves a pending credit that reconciliation replays from
// the token. Insufficient funds fail the transfer before either half applies.
func (e *Engine) Transfer(ctx context.Context, p TransferParams) error {
	if p.Amount <= 0 {
		return fmt.Errorf("transfer amount must be positive: %w", domain.ErrInvalidInput)
	}
	if p.To == "" {
		return fmt.Errorf("transfer recipient is required: %w", domain.ErrInvalidInput)
	}
	if p.Token == "" {
		return fmt.Errorf("transfer idempotency token is required: %w", domain.ErrInvalidInput)
	}
	if p.From == p.To {
		return fmt.Errorf("transfer endpoints must differ: %w", domain.ErrInvalidInput)
	}

	keys := []string{accountLockKey(p.To)}
	if p.From != "" {
		keys = append(keys, accountLockKey(p.From))
	}
	unlock := e.locks.LockMany(keys...)
	defer unlock()

	if p.From != "" {
		from, err := e.store.GetUser(ctx, p.From)
		if err != nil {
			return err
		}
		if from == nil {
			return fmt.Errorf("account %s: %w", p.From, domain.ErrNotFound)
		}

		// Skip the balance check when the debit half already landed; a retried
		// transfer must not fail just because the money already moved.
		debitted, err := e.store.GetLedgerEntryByToken(ctx, p.Token+":debit")
		if err != nil {
			return err
		}
		if debitted == nil && storedBalance(from, p.Asset) < p.Amount {
			return fmt.Errorf("account %s holds %d %s, needs %d: %w",
				p.From, storedBalance(from, p.Asset), p.Asset, p.Amount, domain.ErrInsufficientBalance)
		}

		if err := e.applyLedgerHalf(ctx, p.From, p.Asset, -p.Amount, p.Reason, p.RelatedEntityID, p.Token+":debit"); err != nil {
			return err
		}
	}

	return e.applyLedgerHalf(ctx, p.To, p.Asset, p.Amount, p.Reason, p.RelatedEntityID, p.Token+":credit")
}

// applyLedgerHalf appends one signed ledger entry and then moves the stored
// balance by the same amount. The entry is the authoritative record: if the
// balance delta fails after the append, the drift is logged and repaired by
// account reconciliation instead of being rolled back.
func (e *Engine) applyLedgerHalf(ctx context.Context, accountID string, asset domain.Asset, amount int64, reason domain.LedgerReason, relatedEntityID, token string) error {
	user, err := e.store.GetUser(ctx, accountID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}

	entry := &schema.LedgerEntry{
		ID:               ulid.Make().String(),
		AccountID:        accountID,
		Asset:            asset,
		Amount:           amount,
		Reason:           reason,
		RelatedEntityID:  relatedEntityID,
		IdempotencyToken: token,
		BalanceAfter:     storedBalance(user, asset) + amount,
		CreatedAt:        e.clock.Now(),
	}

	var appended bool
	err = e.withRetry(ctx, func() error {
		var err error
		appended, err = e.store.AppendLedgerEntry(ctx, entry)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	if !appended {
		// Token already spent: this half applied on an earlier attempt.
		return nil
	}

	if err := e.applyDelta(ctx, domain.EntityUser, accountID, assetField(asset), amount); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("account_id", accountID),
			zap.String("token", token),
			zap.String("detail", "ledger entry appended but balance delta failed; reconciliation will repair"),
		)
	}
	return nil
}

// LedgerHistory returns the ledger entries referencing an entity
func (e *Engine) LedgerHistory(ctx context.Context, relatedEntityID string) ([]*schema.LedgerEntry, error) {
	if relatedEntityID == "" {
		return nil, fmt.Errorf("related entity ID is required: %w", domain.ErrInvalidInput)
	}
	return e.store.ListLedgerByRelatedEntity(ctx, relatedEntityID)
}
