// internal/notify/post.go
package notify

import (
	"context"
	"fmt"

	"activity-notifier/internal/models"
)

// handlePostComment notifies the post author about a top-level comment.
func (e *Engine) handlePostComment(ctx context.Context, ev models.PostCommentEvent) error {
	author, err := e.reads.PostAuthor(ctx, ev.PostID)
	if err != nil {
		return fmt.Errorf("resolve post author: %w", err)
	}
	if author == nil {
		e.suppress(models.EventPostComment, ReasonMissingRow, map[string]interface{}{
			"postId": ev.PostID,
		})
		return nil
	}
	if author.ID == ev.ActorID {
		e.suppress(models.EventPostComment, ReasonSelfAction, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}
	if !author.Subscribed(models.SubPostComment) {
		e.suppress(models.EventPostComment, ReasonPreferenceOff, map[string]interface{}{
			"recipientId": author.ID,
		})
		return nil
	}

	actor, err := e.reads.UserProfile(ctx, ev.ActorID)
	if err != nil {
		return fmt.Errorf("resolve comment actor: %w", err)
	}
	if actor == nil {
		e.suppress(models.EventPostComment, ReasonMissingRow, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	n := e.newNotification(author.ID, models.EventPostComment)
	n.PostID = ev.PostID
	n.Actor = snapshot(actor)
	return e.writer.Write(ctx, n)
}

// handlePostReply notifies the parent comment's writer, never the post
// author.
func (e *Engine) handlePostReply(ctx context.Context, ev models.PostReplyEvent) error {
	writer, err := e.reads.PostCommentWriter(ctx, ev.ParentID)
	if err != nil {
		return fmt.Errorf("resolve parent comment writer: %w", err)
	}
	if writer == nil {
		e.suppress(models.EventPostReply, ReasonMissingRow, map[string]interface{}{
			"parentId": ev.ParentID,
		})
		return nil
	}
	if writer.ID == ev.ActorID {
		e.suppress(models.EventPostReply, ReasonSelfAction, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}
	if !writer.Subscribed(models.SubPostReply) {
		e.suppress(models.EventPostReply, ReasonPreferenceOff, map[string]interface{}{
			"recipientId": writer.ID,
		})
		return nil
	}

	actor, err := e.reads.UserProfile(ctx, ev.ActorID)
	if err != nil {
		return fmt.Errorf("resolve reply actor: %w", err)
	}
	if actor == nil {
		e.suppress(models.EventPostReply, ReasonMissingRow, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	n := e.newNotification(writer.ID, models.EventPostReply)
	n.PostID = ev.PostID
	n.Actor = snapshot(actor)
	return e.writer.Write(ctx, n)
}

// handlePostMention notifies the mentioned user, unconditionally.
func (e *Engine) handlePostMention(ctx context.Context, ev models.PostMentionEvent) error {
	if ev.ActorID == ev.MentionedUserID {
		e.suppress(models.EventPostMention, ReasonSelfAction, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	mentioned, err := e.reads.UserProfile(ctx, ev.MentionedUserID)
	if err != nil {
		return fmt.Errorf("resolve mentioned user: %w", err)
	}
	if mentioned == nil {
		e.suppress(models.EventPostMention, ReasonMissingRow, map[string]interface{}{
			"mentionedUserId": ev.MentionedUserID,
		})
		return nil
	}

	actor, err := e.reads.UserProfile(ctx, ev.ActorID)
	if err != nil {
		return fmt.Errorf("resolve mention actor: %w", err)
	}
	if actor == nil {
		e.suppress(models.EventPostMention, ReasonMissingRow, map[string]interface{}{
			"actorId": ev.ActorID,
		})
		return nil
	}

	n := e.newNotification(mentioned.ID, models.EventPostMention)
	n.PostID = ev.PostID
	n.Actor = snapshot(actor)
	return e.writer.Write(ctx, n)
}
