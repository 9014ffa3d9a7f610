// internal/store/render.go
package store

import (
	"activity-notifier/internal/models"
)

// Links builds absolute URLs from the configured service and image
// bases. Rendering is the only place presentation format appears; the
// routing engine never sees it.
type Links struct {
	ServiceBase string
	ImageBase   string
}

// ImageURL returns the absolute URL for a stored image path, or ""
// when the path is empty.
func (l Links) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return join(l.ImageBase, path)
}

func (l Links) ProfileLink(profileURL string) string {
	return join(l.ServiceBase, profileURL)
}

func (l Links) FeedLink(feedID string) string {
	return join(l.ServiceBase, "feeds/"+feedID)
}

func (l Links) PostLink(postID string) string {
	return join(l.ServiceBase, "posts/"+postID)
}

func join(base, path string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + path
}

// actorItem is the stored shape of the denormalized actor snapshot.
type actorItem struct {
	ID    string `dynamodbav:"id"`
	Name  string `dynamodbav:"name"`
	Image string `dynamodbav:"image,omitempty"`
}

// notificationItem is the DynamoDB attribute layout. expiresAt is the
// table's TTL attribute and must be epoch seconds.
type notificationItem struct {
	ID        string     `dynamodbav:"id"`
	UserID    string     `dynamodbav:"userId"`
	Type      string     `dynamodbav:"type"`
	Actor     *actorItem `dynamodbav:"actor,omitempty"`
	FeedID    string     `dynamodbav:"feedId,omitempty"`
	PostID    string     `dynamodbav:"postId,omitempty"`
	LikeCount int        `dynamodbav:"likeCount,omitempty"`
	Thumbnail string     `dynamodbav:"thumbnail,omitempty"`
	Title     string     `dynamodbav:"title,omitempty"`
	Link      string     `dynamodbav:"link,omitempty"`
	IsRead    bool       `dynamodbav:"isRead"`
	CreatedAt int64      `dynamodbav:"createdAt"`
	ExpiresAt int64      `dynamodbav:"expiresAt"`
}

// renderItem converts the engine's structured notification into the
// stored shape: actor image and target links become absolute URLs here.
func renderItem(n *models.Notification, links Links) notificationItem {
	item := notificationItem{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		FeedID:    n.FeedID,
		PostID:    n.PostID,
		LikeCount: n.LikeCount,
		Thumbnail: n.Thumbnail,
		Title:     n.Title,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.UnixMilli(),
		ExpiresAt: n.ExpiresAt.Unix(),
	}

	if n.Actor != nil {
		item.Actor = &actorItem{
			ID:    n.Actor.ID,
			Name:  n.Actor.Name,
			Image: links.ImageURL(n.Actor.Image),
		}
	}

	switch {
	case n.FeedID != "":
		item.Link = links.FeedLink(n.FeedID)
	case n.PostID != "":
		item.Link = links.PostLink(n.PostID)
	case n.ActorProfileURL != "":
		item.Link = links.ProfileLink(n.ActorProfileURL)
	}

	return item
}
