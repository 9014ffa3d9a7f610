// internal/notify/follow.go
package notify

import (
	"context"
	"fmt"

	"activity-notifier/internal/models"
)

// handleFollow notifies the followed user. Ungated. The self check is
// defensive: a well-formed producer never emits a self-follow.
func (e *Engine) handleFollow(ctx context.Context, ev models.FollowEvent) error {
	if ev.ActorID == ev.UserID {
		e.suppress(models.EventFollow, ReasonSelfAction, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	actor, err := e.reads.UserProfile(ctx, ev.ActorID)
	if err != nil {
		return fmt.Errorf("resolve follow actor: %w", err)
	}
	if actor == nil {
		e.suppress(models.EventFollow, ReasonMissingRow, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	n := e.newNotification(ev.UserID, models.EventFollow)
	n.Actor = snapshot(actor)
	n.ActorProfileURL = actor.ProfileURL
	return e.writer.Write(ctx, n)
}
