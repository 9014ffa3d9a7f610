// internal/notify/feed.go
package notify

import (
	"context"
	"fmt"

	"activity-notifier/internal/models"
)

// handleFeedLike notifies the feed author with the running like count.
// The event carries no actor, so no self check is possible here; the
// legacy LIKE event covers the per-like case.
func (e *Engine) handleFeedLike(ctx context.Context, ev models.FeedLikeEvent) error {
	author, err := e.reads.FeedAuthor(ctx, ev.FeedID)
	if err != nil {
		return fmt.Errorf("resolve feed author: %w", err)
	}
	if author == nil {
		e.suppress(models.EventFeedLike, ReasonMissingRow, map[string]interface{}{
			"feedId": ev.FeedID,
		})
		return nil
	}
	if !author.Subscribed(models.SubFeedLike) {
		e.suppress(models.EventFeedLike, ReasonPreferenceOff, map[string]interface{}{
			"recipientId": author.ID,
		})
		return nil
	}

	n := e.newNotification(author.ID, models.EventFeedLike)
	n.FeedID = ev.FeedID
	n.LikeCount = ev.LikeCount
	n.Thumbnail = author.Thumbnail
	n.Title = author.Title
	return e.writer.Write(ctx, n)
}

// handleFeedComment notifies the feed author about a top-level comment.
func (e *Engine) handleFeedComment(ctx context.Context, ev models.FeedCommentEvent) error {
	author, err := e.reads.FeedAuthor(ctx, ev.FeedID)
	if err != nil {
		return fmt.Errorf("resolve feed author: %w", err)
	}
	if author == nil {
		e.suppress(models.EventFeedComment, ReasonMissingRow, map[string]interface{}{
			"feedId": ev.FeedID,
		})
		return nil
	}
	if author.ID == ev.ActorID {
		e.suppress(models.EventFeedComment, ReasonSelfAction, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}
	if !author.Subscribed(models.SubFeedComment) {
		e.suppress(models.EventFeedComment, ReasonPreferenceOff, map[string]interface{}{
			"recipientId": author.ID,
		})
		return nil
	}

	actor, err := e.reads.UserProfile(ctx, ev.ActorID)
	if err != nil {
		return fmt.Errorf("resolve comment actor: %w", err)
	}
	if actor == nil {
		e.suppress(models.EventFeedComment, ReasonMissingRow, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	n := e.newNotification(author.ID, models.EventFeedComment)
	n.FeedID = ev.FeedID
	n.Actor = snapshot(actor)
	return e.writer.Write(ctx, n)
}

// handleFeedReply notifies the parent comment's writer, never the feed
// author.
func (e *Engine) handleFeedReply(ctx context.Context, ev models.FeedReplyEvent) error {
	writer, err := e.reads.FeedCommentWriter(ctx, ev.ParentID)
	if err != nil {
		return fmt.Errorf("resolve parent comment writer: %w", err)
	}
	if writer == nil {
		e.suppress(models.EventFeedReply, ReasonMissingRow, map[string]interface{}{
			"parentId": ev.ParentID,
		})
		return nil
	}
	if writer.ID == ev.ActorID {
		e.suppress(models.EventFeedReply, ReasonSelfAction, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}
	if !writer.Subscribed(models.SubFeedReply) {
		e.suppress(models.EventFeedReply, ReasonPreferenceOff, map[string]interface{}{
			"recipientId": writer.ID,
		})
		return nil
	}

	actor, err := e.reads.UserProfile(ctx, ev.ActorID)
	if err != nil {
		return fmt.Errorf("resolve reply actor: %w", err)
	}
	if actor == nil {
		e.suppress(models.EventFeedReply, ReasonMissingRow, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	n := e.newNotification(writer.ID, models.EventFeedReply)
	n.FeedID = ev.FeedID
	n.Actor = snapshot(actor)
	return e.writer.Write(ctx, n)
}

// handleFeedMention notifies the mentioned user. Mentions are
// unconditional: the preference gate is never consulted.
func (e *Engine) handleFeedMention(ctx context.Context, ev models.FeedMentionEvent) error {
	if ev.ActorID == ev.MentionedUserID {
		e.suppress(models.EventFeedMention, ReasonSelfAction, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	mentioned, err := e.reads.UserProfile(ctx, ev.MentionedUserID)
	if err != nil {
		return fmt.Errorf("resolve mentioned user: %w", err)
	}
	if mentioned == nil {
		e.suppress(models.EventFeedMention, ReasonMissingRow, map[string]interface{}{
			"mentionedUserId": ev.MentionedUserID,
		})
		return nil
	}

	actor, err := e.reads.UserProfile(ctx, ev.ActorID)
	if err != nil {
		return fmt.Errorf("resolve mention actor: %w", err)
	}
	if actor == nil {
		e.suppress(models.EventFeedMention, ReasonMissingRow, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	n := e.newNotification(mentioned.ID, models.EventFeedMention)
	n.FeedID = ev.FeedID
	n.Actor = snapshot(actor)
	return e.writer.Write(ctx, n)
}
