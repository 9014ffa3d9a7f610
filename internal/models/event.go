// internal/models/event.go
package models

// EventType is the discriminant carried in the `type` field of every
// queue message. The set is closed: the dispatcher has exactly one
// handler per value and drops anything else.
type EventType string

const (
	EventFollow      EventType = "FOLLOW"
	EventFeedLike    EventType = "FEED_LIKE"
	EventFeedComment EventType = "FEED_COMMENT"
	EventFeedReply   EventType = "FEED_REPLY"
	EventFeedMention EventType = "FEED_MENTION"
	EventPostComment EventType = "POST_COMMENT"
	EventPostReply   EventType = "POST_REPLY"
	EventPostMention EventType = "POST_MENTION"

	// Legacy discriminants still emitted by older producers.
	EventLike    EventType = "LIKE"
	EventComment EventType = "COMMENT"

	// Aliases for the reply kinds used before the rename; the decoder
	// maps them onto FeedReplyEvent/PostReplyEvent.
	EventFeedAnswer EventType = "FEED_ANSWER"
	EventPostAnswer EventType = "POST_ANSWER"
)

// Event is the closed union of activity events. Variants carry only the
// identifiers needed to resolve a notification; everything else is
// looked up at handling time.
type Event interface {
	EventType() EventType
}

type FollowEvent struct {
	ActorID string `json:"actorId"`
	UserID  string `json:"userId"`
}

func (FollowEvent) EventType() EventType { return EventFollow }

// FeedLikeEvent carries no actor: the producer aggregates likes and
// reports only the running count.
type FeedLikeEvent struct {
	FeedID    string `json:"feedId"`
	LikeCount int    `json:"likeCount"`
}

func (FeedLikeEvent) EventType() EventType { return EventFeedLike }

type FeedCommentEvent struct {
	FeedID  string `json:"feedId"`
	ActorID string `json:"actorId"`
}

func (FeedCommentEvent) EventType() EventType { return EventFeedComment }

type FeedReplyEvent struct {
	FeedID   string `json:"feedId"`
	ActorID  string `json:"actorId"`
	ParentID string `json:"parentId"`
}

func (FeedReplyEvent) EventType() EventType { return EventFeedReply }

type FeedMentionEvent struct {
	FeedID          string `json:"feedId"`
	ActorID         string `json:"actorId"`
	MentionedUserID string `json:"mentionedUserId"`
}

func (FeedMentionEvent) EventType() EventType { return EventFeedMention }

type PostCommentEvent struct {
	PostID  string `json:"postId"`
	ActorID string `json:"actorId"`
}

func (PostCommentEvent) EventType() EventType { return EventPostComment }

type PostReplyEvent struct {
	PostID   string `json:"postId"`
	ActorID  string `json:"actorId"`
	ParentID string `json:"parentId"`
}

func (PostReplyEvent) EventType() EventType { return EventPostReply }

type PostMentionEvent struct {
	PostID          string `json:"postId"`
	ActorID         string `json:"actorId"`
	MentionedUserID string `json:"mentionedUserId"`
}

func (PostMentionEvent) EventType() EventType { return EventPostMention }

// LikeEvent is the legacy per-like event; unlike FeedLikeEvent it names
// the acting user.
type LikeEvent struct {
	ActorID string `json:"actorId"`
	FeedID  string `json:"feedId"`
}

func (LikeEvent) EventType() EventType { return EventLike }

// CommentEvent is the legacy unified comment event. A non-empty
// ParentCommentID marks a reply, which may fan out to two recipients.
type CommentEvent struct {
	ActorID         string `json:"actorId"`
	FeedID          string `json:"feedId"`
	ParentCommentID string `json:"parentCommentId,omitempty"`
}

func (CommentEvent) EventType() EventType { return EventComment }
