// internal/notify/legacy.go
package notify

import (
	"context"
	"fmt"

	"activity-notifier/internal/models"
)

// handleLike handles the legacy per-like event, which names the acting
// user. Ungated, like everything from before the preference set existed.
func (e *Engine) handleLike(ctx context.Context, ev models.LikeEvent) error {
	author, err := e.reads.FeedAuthor(ctx, ev.FeedID)
	if err != nil {
		return fmt.Errorf("resolve feed author: %w", err)
	}
	if author == nil {
		e.suppress(models.EventLike, ReasonMissingRow, map[string]interface{}{
			"feedId": ev.FeedID,
		})
		return nil
	}
	if author.ID == ev.ActorID {
		e.suppress(models.EventLike, ReasonSelfAction, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	actor, err := e.reads.UserProfile(ctx, ev.ActorID)
	if err != nil {
		return fmt.Errorf("resolve like actor: %w", err)
	}
	if actor == nil {
		e.suppress(models.EventLike, ReasonMissingRow, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	n := e.newNotification(author.ID, models.EventLike)
	n.FeedID = ev.FeedID
	n.Actor = snapshot(actor)
	return e.writer.Write(ctx, n)
}

// handleComment handles the legacy unified comment event. A top-level
// comment notifies the feed author; a reply additionally considers the
// parent comment's writer, so one event can produce two notifications.
// The second write is skipped when the writer is the actor or the
// author already notified above: one action never yields two rows for
// one recipient.
func (e *Engine) handleComment(ctx context.Context, ev models.CommentEvent) error {
	actor, err := e.reads.UserProfile(ctx, ev.ActorID)
	if err != nil {
		return fmt.Errorf("resolve comment actor: %w", err)
	}
	author, err := e.reads.FeedAuthor(ctx, ev.FeedID)
	if err != nil {
		return fmt.Errorf("resolve feed author: %w", err)
	}
	if actor == nil || author == nil {
		e.suppress(models.EventComment, ReasonMissingRow, map[string]interface{}{
			"actorId": ev.ActorID,
			"feedId":  ev.FeedID,
		})
		return nil
	}

	authorNotified := false
	if author.ID != ev.ActorID {
		n := e.newNotification(author.ID, models.EventComment)
		n.FeedID = ev.FeedID
		n.Actor = snapshot(actor)
		if err := e.writer.Write(ctx, n); err != nil {
			return err
		}
		authorNotified = true
	} else {
		e.suppress(models.EventComment, ReasonSelfAction, map[string]interface{}{
			"actorId": ev.ActorID,
		})
	}

	if ev.ParentCommentID == "" {
		return nil
	}

	parentWriter, err := e.reads.FeedCommentWriter(ctx, ev.ParentCommentID)
	if err != nil {
		return fmt.Errorf("resolve parent comment writer: %w", err)
	}
	if parentWriter == nil {
		e.suppress(models.EventComment, ReasonMissingRow, map[string]interface{}{
			"parentCommentId": ev.ParentCommentID,
		})
		return nil
	}
	if parentWriter.ID == ev.ActorID {
		e.suppress(models.EventComment, ReasonSelfAction, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}
	if authorNotified && parentWriter.ID == author.ID {
		return nil
	}

	n := e.newNotification(parentWriter.ID, models.EventComment)
	n.FeedID = ev.FeedID
	n.Actor = snapshot(actor)
	return e.writer.Write(ctx, n)
}
