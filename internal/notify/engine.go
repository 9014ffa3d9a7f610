// internal/notify/engine.go

// Package notify is the event-to-notification routing engine: a fixed
// mapping from each activity event variant to zero-or-one notification
// writes (two at most, for the legacy fan-out comment handler).
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"activity-notifier/internal/common/logger"
	"activity-notifier/internal/common/metrics"
	"activity-notifier/internal/models"
)

// Suppression reasons, used as metric labels.
const (
	ReasonSelfAction    = "self_action"
	ReasonPreferenceOff = "preference_off"
	ReasonMissingRow    = "missing_row"
)

// Reader is the read side handlers depend on. Point lookups only; a
// missing row comes back as (nil, nil).
type Reader interface {
	UserProfile(ctx context.Context, id string) (*models.UserProfile, error)
	FeedAuthor(ctx context.Context, feedID string) (*models.ContentAuthor, error)
	PostAuthor(ctx context.Context, postID string) (*models.ContentAuthor, error)
	FeedCommentWriter(ctx context.Context, commentID string) (*models.UserProfile, error)
	PostCommentWriter(ctx context.Context, commentID string) (*models.UserProfile, error)
}

// Writer persists one built notification.
type Writer interface {
	Write(ctx context.Context, n *models.Notification) error
}

// Engine routes decoded events to their handlers. It is stateless and
// reentrant: the hosting loop may run it concurrently across messages.
type Engine struct {
	reads  Reader
	writer Writer
	logger logger.Logger
	ttl    time.Duration

	now   func() time.Time
	newID func() string
}

func NewEngine(reads Reader, writer Writer, log logger.Logger, ttl time.Duration) *Engine {
	return &Engine{
		reads:  reads,
		writer: writer,
		logger: log,
		ttl:    ttl,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Handle runs exactly one handler for the event. The union is closed at
// the decoder, so the default arm only fires if a new variant is added
// without a handler; it drops the event the same way the decoder drops
// unknown discriminants.
func (e *Engine) Handle(ctx context.Context, ev models.Event) error {
	switch v := ev.(type) {
	case models.FollowEvent:
		return e.handleFollow(ctx, v)
	case models.FeedLikeEvent:
		return e.handleFeedLike(ctx, v)
	case models.FeedCommentEvent:
		return e.handleFeedComment(ctx, v)
	case models.FeedReplyEvent:
		return e.handleFeedReply(ctx, v)
	case models.FeedMentionEvent:
		return e.handleFeedMention(ctx, v)
	case models.PostCommentEvent:
		return e.handlePostComment(ctx, v)
	case models.PostReplyEvent:
		return e.handlePostReply(ctx, v)
	case models.PostMentionEvent:
		return e.handlePostMention(ctx, v)
	case models.LikeEvent:
		return e.handleLike(ctx, v)
	case models.CommentEvent:
		return e.handleComment(ctx, v)
	default:
		metrics.EventsUnknownType.Inc()
		e.logger.Debug("no handler for event", map[string]interface{}{
			"eventType": string(ev.EventType()),
		})
		return nil
	}
}

// newNotification stamps id, creation time and expiry; handlers fill in
// the rest.
func (e *Engine) newNotification(recipientID string, kind models.EventType) *models.Notification {
	now := e.now().UTC()
	return &models.Notification{
		ID:        e.newID(),
		UserID:    recipientID,
		Type:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(e.ttl),
	}
}

func (e *Engine) suppress(kind models.EventType, reason string, fields map[string]interface{}) {
	metrics.NotificationsSuppressed.WithLabelValues(string(kind), reason).Inc()
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["eventType"] = string(kind)
	fields["reason"] = reason
	e.logger.Debug("notification suppressed", fields)
}

func snapshot(u *models.UserProfile) *models.ActorSnapshot {
	return &models.ActorSnapshot{
		ID:    u.ID,
		Name:  u.Name,
		Image: u.Image,
	}
}
