package engage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campuslink/engage-core/internal/domain"
	"github.com/campuslink/engage-core/internal/logger"
	"github.com/campuslink/engage-core/internal/notifier"
	"github.com/campuslink/engage-core/internal/store/schema"
)

// toggleEffect is one counter movement caused by switching a toggle on. The
// same movement is reversed, sign flipped, when the toggle switches off.
type toggleEffect struct {
	entity domain.EntityKind
	id     string
	field  domain.CounterField
}

// SetToggle switches the (actor, target, kind) membership fact to the desired
// state and applies the derived counter movements exactly once. Setting an
// already-set toggle, or clearing an already-clear one, changes nothing and
// reports changed=false. Safe to retry and safe under concurrent duplicate
// requests: the conditional insert/delete on the natural key decides which
// caller owns the side effects.
func (e *Engine) SetToggle(ctx context.Context, actorID, targetID string, kind domain.ToggleKind, on bool) (bool, error) {
	if actorID == "" || targetID == "" {
		return false, fmt.Errorf("actor and target are required: %w", domain.ErrInvalidInput)
	}
	if !kind.Valid() {
		return false, fmt.Errorf("unknown toggle kind %q: %w", kind, domain.ErrInvalidInput)
	}
	if kind == domain.ToggleFollowUser && actorID == targetID {
		return false, fmt.Errorf("cannot follow yourself: %w", domain.ErrInvalidInput)
	}

	actor, err := e.store.GetUser(ctx, actorID)
	if err != nil {
		return false, err
	}
	if actor == nil {
		return false, fmt.Errorf("actor %s: %w", actorID, domain.ErrNotFound)
	}

	target, err := e.resolveToggleTarget(ctx, targetID, kind)
	if err != nil {
		return false, err
	}

	changed, err := e.flipToggle(ctx, actorID, targetID, kind, target, on)
	if err != nil || !changed {
		return false, err
	}

	if on {
		e.rewardAndNotify(ctx, actorID, targetID, kind, target)
	}
	return true, nil
}

// flipToggle performs the conditional insert/delete and the derived counter
// movements under the natural-key lock. Reward and notification run after the
// lock is released; holding a shard lock across Transfer could collide with
// an account shard.
func (e *Engine) flipToggle(ctx context.Context, actorID, targetID string, kind domain.ToggleKind, target *toggleTarget, on bool) (bool, error) {
	unlock := e.locks.Lock(toggleLockKey(actorID, targetID, string(kind)))
	defer unlock()

	var changed bool
	var err error
	if on {
		rec := &schema.ToggleRecord{
			ActorID:   actorID,
			TargetID:  targetID,
			Kind:      kind,
			CreatedAt: e.clock.Now(),
		}
		changed, err = e.store.InsertToggle(ctx, rec)
	} else {
		changed, err = e.store.DeleteToggle(ctx, actorID, targetID, kind)
	}
	if err != nil || !changed {
		return false, err
	}

	sign := int64(1)
	if !on {
		sign = -1
	}
	for _, effect := range e.toggleEffects(actorID, targetID, kind, target) {
		if err := e.applyDelta(ctx, effect.entity, effect.id, effect.field, sign); err != nil {
			logger.ErrorCtx(ctx, err,
				zap.String("actor_id", actorID),
				zap.String("target_id", targetID),
				zap.String("kind", string(kind)),
				zap.String("detail", "toggle recorded but counter delta failed; reconciliation will repair"),
			)
		}
	}
	return true, nil
}

// GetToggleState reports whether the (actor, target, kind) toggle is set
func (e *Engine) GetToggleState(ctx context.Context, actorID, targetID string, kind domain.ToggleKind) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("unknown toggle kind %q: %w", kind, domain.ErrInvalidInput)
	}
	rec, err := e.store.GetToggle(ctx, actorID, targetID, kind)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// toggleTarget carries what the effect and notification logic needs to know
// about the toggled entity, regardless of its kind
type toggleTarget struct {
	ownerID string
	postID  string
}

func (e *Engine) resolveToggleTarget(ctx context.Context, targetID string, kind domain.ToggleKind) (*toggleTarget, error) {
	switch kind.TargetEntity() {
	case domain.EntityPost:
		post, err := e.store.GetPost(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, fmt.Errorf("post %s: %w", targetID, domain.ErrNotFound)
		}
		return &toggleTarget{ownerID: post.AuthorID, postID: post.ID}, nil
	case domain.EntityComment:
		comment, err := e.store.GetComment(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if comment == nil {
			return nil, fmt.Errorf("comment %s: %w", targetID, domain.ErrNotFound)
		}
		return &toggleTarget{ownerID: comment.AuthorID, postID: comment.PostID}, nil
	case domain.EntityUser:
		user, err := e.store.GetUser(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, fmt.Errorf("user %s: %w", targetID, domain.ErrNotFound)
		}
		return &toggleTarget{ownerID: user.ID}, nil
	}
	return nil, fmt.Errorf("unknown toggle kind %q: %w", kind, domain.ErrInvalidInput)
}

func (e *Engine) toggleEffects(actorID, targetID string, kind domain.ToggleKind, target *toggleTarget) []toggleEffect {
	switch kind {
	case domain.ToggleLikePost:
		return []toggleEffect{
			{domain.EntityPost, targetID, domain.FieldLikeCount},
			{domain.EntityUser, target.ownerID, domain.FieldLikeCount},
		}
	case domain.ToggleLikeComment:
		return []toggleEffect{
			{domain.EntityComment, targetID, domain.FieldLikeCount},
		}
	case domain.ToggleCollectPost:
		return []toggleEffect{
			{domain.EntityPost, targetID, domain.FieldCollectCount},
		}
	case domain.ToggleFollowUser:
		return []toggleEffect{
			{domain.EntityUser, targetID, domain.FieldFollowerCount},
			{domain.EntityUser, actorID, domain.FieldFollowingCount},
		}
	}
	return nil
}

// rewardAndNotify handles the on-only side effects: the author's first-like
// experience reward and the notification to the target's owner. The reward
// token is keyed on (actor, post), so un-liking and re-liking never grants it
// twice, and the reward survives even when the like is later withdrawn.
func (e *Engine) rewardAndNotify(ctx context.Context, actorID, targetID string, kind domain.ToggleKind, target *toggleTarget) {
	if kind == domain.ToggleLikePost && target.ownerID != actorID && e.cfg.LikeRewardXP > 0 {
		err := e.Transfer(ctx, TransferParams{
			To:              target.ownerID,
			Amount:          e.cfg.LikeRewardXP,
			Asset:           domain.AssetExperience,
			Reason:          domain.ReasonLikeReward,
			RelatedEntityID: targetID,
			Token:           fmt.Sprintf("like-reward:%s:%s", actorID, targetID),
		})
		if err != nil {
			logger.ErrorCtx(ctx, err,
				zap.String("post_id", targetID),
				zap.String("detail", "like recorded but author reward failed"),
			)
		}
	}

	var notifyKind domain.NotificationKind
	var content string
	switch kind {
	case domain.ToggleLikePost:
		notifyKind, content = domain.NotifyLike, "liked your post"
	case domain.ToggleLikeComment:
		notifyKind, content = domain.NotifyCommentLike, "liked your comment"
	case domain.ToggleFollowUser:
		notifyKind, content = domain.NotifyFollow, "started following you"
	default:
		return
	}

	e.notify(ctx, &notifier.Event{
		Kind:            notifyKind,
		ToActorID:       target.ownerID,
		FromActorID:     actorID,
		RelatedEntityID: targetID,
		Content:         content,
	})
}
