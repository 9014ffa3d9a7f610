// internal/models/user.go
package models

// Subscription preference flags. Membership in users.subscription gates
// the matching notification kind; mentions and FOLLOW are unconditional.
const (
	SubFollow      = "FOLLOW"
	SubFeedLike    = "FEED_LIKE"
	SubFeedComment = "FEED_COMMENT"
	SubFeedReply   = "FEED_REPLY"
	SubPostComment = "POST_COMMENT"
	SubPostReply   = "POST_REPLY"
)

// UserProfile is the point-lookup view of a user: display attributes
// plus the subscription preference set.
type UserProfile struct {
	ID           string
	Name         string
	Image        string
	ProfileURL   string
	Subscription []string
}

// Subscribed reports whether the user opted into the given flag.
func (u *UserProfile) Subscribed(flag string) bool {
	for _, s := range u.Subscription {
		if s == flag {
			return true
		}
	}
	return false
}

// ContentAuthor is the joined view of a feed or post and its author's
// user row: everything a like/comment handler needs in one query.
type ContentAuthor struct {
	ID           string // author user id
	Subscription []string
	Thumbnail    string
	Title        string
}

// Subscribed reports whether the author opted into the given flag.
func (a *ContentAuthor) Subscribed(flag string) bool {
	for _, s := range a.Subscription {
		if s == flag {
			return true
		}
	}
	return false
}
