// internal/models/notification.go
package models

import "time"

// ActorSnapshot is the denormalized view of the acting user copied into
// a notification at creation time, so later profile edits do not
// retroactively change past notifications.
type ActorSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Notification is the record the routing engine produces. It carries
// only structured fields; store attribute names and display links are
// rendered at the write boundary.
type Notification struct {
	ID     string
	UserID string // recipient
	Type   EventType
	Actor  *ActorSnapshot // nil for FEED_LIKE, which has no actor

	// ActorProfileURL feeds the deep link for FOLLOW notifications; it
	// is not part of the stored actor snapshot.
	ActorProfileURL string

	FeedID    string
	PostID    string
	LikeCount int
	Thumbnail string
	Title     string
	IsRead    bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TargetID returns the identifier of the content or user the event
// acted on, used for the dedup key.
func (n *Notification) TargetID() string {
	switch {
	case n.FeedID != "":
		return n.FeedID
	case n.PostID != "":
		return n.PostID
	default:
		return n.UserID
	}
}
