package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-notifier/internal/common/logger"
	"activity-notifier/internal/models"
)

// fakeReader serves point lookups from in-memory maps; absent keys come
// back as (nil, nil), matching the store contract.
type fakeReader struct {
	users          map[string]*models.UserProfile
	feeds          map[string]*models.ContentAuthor
	posts          map[string]*models.ContentAuthor
	feedComments   map[string]*models.UserProfile
	postComments   map[string]*models.UserProfile
	failingLookups map[string]error
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		users:          map[string]*models.UserProfile{},
		feeds:          map[string]*models.ContentAuthor{},
		posts:          map[string]*models.ContentAuthor{},
		feedComments:   map[string]*models.UserProfile{},
		postComments:   map[string]*models.UserProfile{},
		failingLookups: map[string]error{},
	}
}

func (f *fakeReader) UserProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	if err := f.failingLookups["user:"+id]; err != nil {
		return nil, err
	}
	return f.users[id], nil
}

func (f *fakeReader) FeedAuthor(ctx context.Context, feedID string) (*models.ContentAuthor, error) {
	if err := f.failingLookups["feed:"+feedID]; err != nil {
		return nil, err
	}
	return f.feeds[feedID], nil
}

func (f *fakeReader) PostAuthor(ctx context.Context, postID string) (*models.ContentAuthor, error) {
	if err := f.failingLookups["post:"+postID]; err != nil {
		return nil, err
	}
	return f.posts[postID], nil
}

func (f *fakeReader) FeedCommentWriter(ctx context.Context, commentID string) (*models.UserProfile, error) {
	if err := f.failingLookups["feedComment:"+commentID]; err != nil {
		return nil, err
	}
	return f.feedComments[commentID], nil
}

func (f *fakeReader) PostCommentWriter(ctx context.Context, commentID string) (*models.UserProfile, error) {
	if err := f.failingLookups["postComment:"+commentID]; err != nil {
		return nil, err
	}
	return f.postComments[commentID], nil
}

type fakeWriter struct {
	written []*models.Notification
	err     error
}

func (f *fakeWriter) Write(ctx context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, n)
	return nil
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, reads *fakeReader, writer *fakeWriter) *Engine {
	e := NewEngine(reads, writer, logger.NewTestLogger(t), 30*24*time.Hour)
	e.now = func() time.Time { return testNow }
	seq := 0
	e.newID = func() string {
		seq++
		return fmt.Sprintf("notif-%d", seq)
	}
	return e
}

func userProfile(id string, subs ...string) *models.UserProfile {
	return &models.UserProfile{
		ID:           id,
		Name:         "name-" + id,
		Image:        "profiles/" + id + ".png",
		ProfileURL:   "users/" + id,
		Subscription: subs,
	}
}

func contentAuthor(id string, subs ...string) *models.ContentAuthor {
	return &models.ContentAuthor{
		ID:           id,
		Subscription: subs,
		Thumbnail:    "thumbs/t.png",
		Title:        "a title",
	}
}

func TestHandleFollow(t *testing.T) {
	reads := newFakeReader()
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.FollowEvent{ActorID: "u1", UserID: "u2"})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)

	n := writer.written[0]
	assert.Equal(t, "notif-1", n.ID)
	assert.Equal(t, "u2", n.UserID)
	assert.Equal(t, models.EventFollow, n.Type)
	assert.Equal(t, "u1", n.Actor.ID)
	assert.Equal(t, "name-u1", n.Actor.Name)
	assert.Equal(t, "users/u1", n.ActorProfileURL)
	assert.Equal(t, testNow, n.CreatedAt)
	assert.Equal(t, testNow.Add(30*24*time.Hour), n.ExpiresAt)
}

func TestHandleFollow_Suppressed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(reads *fakeReader)
		event models.FollowEvent
	}{
		{
			name:  "self follow",
			setup: func(reads *fakeReader) { reads.users["u1"] = userProfile("u1") },
			event: models.FollowEvent{ActorID: "u1", UserID: "u1"},
		},
		{
			name:  "actor deleted",
			setup: func(reads *fakeReader) {},
			event: models.FollowEvent{ActorID: "gone", UserID: "u2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reads := newFakeReader()
			tt.setup(reads)
			writer := &fakeWriter{}
			e := newTestEngine(t, reads, writer)

			require.NoError(t, e.Handle(context.Background(), tt.event))
			assert.Empty(t, writer.written)
		})
	}
}

func TestHandleFeedLike(t *testing.T) {
	reads := newFakeReader()
	reads.feeds["f1"] = contentAuthor("author-1", models.SubFeedLike)
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.FeedLikeEvent{FeedID: "f1", LikeCount: 5})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)

	n := writer.written[0]
	assert.Equal(t, "author-1", n.UserID)
	assert.Equal(t, models.EventFeedLike, n.Type)
	assert.Equal(t, "f1", n.FeedID)
	assert.Equal(t, 5, n.LikeCount)
	assert.Equal(t, "thumbs/t.png", n.Thumbnail)
	assert.Equal(t, "a title", n.Title)
	assert.Nil(t, n.Actor)
}

func TestHandleFeedLike_Suppressed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(reads *fakeReader)
	}{
		{
			name:  "feed deleted",
			setup: func(reads *fakeReader) {},
		},
		{
			name: "author not subscribed",
			setup: func(reads *fakeReader) {
				reads.feeds["f1"] = contentAuthor("author-1", models.SubFeedComment)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reads := newFakeReader()
			tt.setup(reads)
			writer := &fakeWriter{}
			e := newTestEngine(t, reads, writer)

			require.NoError(t, e.Handle(context.Background(), models.FeedLikeEvent{FeedID: "f1", LikeCount: 5}))
			assert.Empty(t, writer.written)
		})
	}
}

func TestHandleFeedComment(t *testing.T) {
	reads := newFakeReader()
	reads.feeds["f1"] = contentAuthor("author-1", models.SubFeedComment)
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.FeedCommentEvent{FeedID: "f1", ActorID: "u1"})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)

	n := writer.written[0]
	assert.Equal(t, "author-1", n.UserID)
	assert.Equal(t, models.EventFeedComment, n.Type)
	assert.Equal(t, "f1", n.FeedID)
	assert.Equal(t, "u1", n.Actor.ID)
}

func TestHandleFeedComment_Suppressed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(reads *fakeReader)
		event models.FeedCommentEvent
	}{
		{
			name: "author commented own feed",
			setup: func(reads *fakeReader) {
				reads.feeds["f1"] = contentAuthor("u1", models.SubFeedComment)
				reads.users["u1"] = userProfile("u1")
			},
			event: models.FeedCommentEvent{FeedID: "f1", ActorID: "u1"},
		},
		{
			name: "author not subscribed",
			setup: func(reads *fakeReader) {
				reads.feeds["f1"] = contentAuthor("author-1")
				reads.users["u1"] = userProfile("u1")
			},
			event: models.FeedCommentEvent{FeedID: "f1", ActorID: "u1"},
		},
		{
			name: "actor deleted",
			setup: func(reads *fakeReader) {
				reads.feeds["f1"] = contentAuthor("author-1", models.SubFeedComment)
			},
			event: models.FeedCommentEvent{FeedID: "f1", ActorID: "gone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reads := newFakeReader()
			tt.setup(reads)
			writer := &fakeWriter{}
			e := newTestEngine(t, reads, writer)

			require.NoError(t, e.Handle(context.Background(), tt.event))
			assert.Empty(t, writer.written)
		})
	}
}

func TestHandleFeedReply_NotifiesParentWriterNotAuthor(t *testing.T) {
	reads := newFakeReader()
	reads.feeds["f1"] = contentAuthor("author-1", models.SubFeedComment, models.SubFeedReply)
	reads.feedComments["c1"] = userProfile("writer-1", models.SubFeedReply)
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.FeedReplyEvent{FeedID: "f1", ActorID: "u1", ParentID: "c1"})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)

	n := writer.written[0]
	assert.Equal(t, "writer-1", n.UserID)
	assert.Equal(t, models.EventFeedReply, n.Type)
	assert.Equal(t, "f1", n.FeedID)
}

func TestHandleFeedReply_SelfReply(t *testing.T) {
	reads := newFakeReader()
	reads.feedComments["c1"] = userProfile("u1", models.SubFeedReply)
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	require.NoError(t, e.Handle(context.Background(), models.FeedReplyEvent{FeedID: "f1", ActorID: "u1", ParentID: "c1"}))
	assert.Empty(t, writer.written)
}

func TestHandleFeedReply_ParentDeleted(t *testing.T) {
	reads := newFakeReader()
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	require.NoError(t, e.Handle(context.Background(), models.FeedReplyEvent{FeedID: "f1", ActorID: "u1", ParentID: "gone"}))
	assert.Empty(t, writer.written)
}

func TestHandleFeedMention_IgnoresPreferences(t *testing.T) {
	reads := newFakeReader()
	reads.users["u1"] = userProfile("u1")
	reads.users["u2"] = userProfile("u2") // empty subscription set
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.FeedMentionEvent{FeedID: "f1", ActorID: "u1", MentionedUserID: "u2"})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)

	n := writer.written[0]
	assert.Equal(t, "u2", n.UserID)
	assert.Equal(t, models.EventFeedMention, n.Type)
	assert.Equal(t, "f1", n.FeedID)
	assert.Equal(t, "u1", n.Actor.ID)
}

func TestHandleFeedMention_SelfMention(t *testing.T) {
	reads := newFakeReader()
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	require.NoError(t, e.Handle(context.Background(), models.FeedMentionEvent{FeedID: "f1", ActorID: "u1", MentionedUserID: "u1"}))
	assert.Empty(t, writer.written)
}

func TestHandlePostComment(t *testing.T) {
	reads := newFakeReader()
	reads.posts["p1"] = contentAuthor("author-1", models.SubPostComment)
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.PostCommentEvent{PostID: "p1", ActorID: "u1"})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)

	n := writer.written[0]
	assert.Equal(t, "author-1", n.UserID)
	assert.Equal(t, models.EventPostComment, n.Type)
	assert.Equal(t, "p1", n.PostID)
	assert.Empty(t, n.FeedID)
}

func TestHandlePostComment_AuthorCommentedOwnPost(t *testing.T) {
	reads := newFakeReader()
	reads.posts["p1"] = contentAuthor("u1", models.SubPostComment)
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	require.NoError(t, e.Handle(context.Background(), models.PostCommentEvent{PostID: "p1", ActorID: "u1"}))
	assert.Empty(t, writer.written)
}

func TestHandlePostComment_GateOff(t *testing.T) {
	reads := newFakeReader()
	reads.posts["p1"] = contentAuthor("author-1", models.SubFeedComment)
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	require.NoError(t, e.Handle(context.Background(), models.PostCommentEvent{PostID: "p1", ActorID: "u1"}))
	assert.Empty(t, writer.written)
}

func TestHandlePostReply(t *testing.T) {
	reads := newFakeReader()
	reads.postComments["c1"] = userProfile("writer-1", models.SubPostReply)
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.PostReplyEvent{PostID: "p1", ActorID: "u1", ParentID: "c1"})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)
	assert.Equal(t, "writer-1", writer.written[0].UserID)
	assert.Equal(t, "p1", writer.written[0].PostID)
}

func TestHandlePostMention(t *testing.T) {
	reads := newFakeReader()
	reads.users["u1"] = userProfile("u1")
	reads.users["u2"] = userProfile("u2")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.PostMentionEvent{PostID: "p1", ActorID: "u1", MentionedUserID: "u2"})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)
	assert.Equal(t, "u2", writer.written[0].UserID)
	assert.Equal(t, models.EventPostMention, writer.written[0].Type)
}

func TestHandleLike(t *testing.T) {
	reads := newFakeReader()
	reads.feeds["f1"] = contentAuthor("author-1")
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.LikeEvent{ActorID: "u1", FeedID: "f1"})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)

	n := writer.written[0]
	assert.Equal(t, "author-1", n.UserID)
	assert.Equal(t, models.EventLike, n.Type)
	assert.Equal(t, "u1", n.Actor.ID)
}

func TestHandleLike_SelfLike(t *testing.T) {
	reads := newFakeReader()
	reads.feeds["f1"] = contentAuthor("u1")
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	require.NoError(t, e.Handle(context.Background(), models.LikeEvent{ActorID: "u1", FeedID: "f1"}))
	assert.Empty(t, writer.written)
}

func TestHandleComment_TopLevel(t *testing.T) {
	reads := newFakeReader()
	reads.feeds["f1"] = contentAuthor("author-1")
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.CommentEvent{ActorID: "u1", FeedID: "f1"})
	require.NoError(t, err)
	require.Len(t, writer.written, 1)
	assert.Equal(t, "author-1", writer.written[0].UserID)
	assert.Equal(t, models.EventComment, writer.written[0].Type)
}

func TestHandleComment_ReplyFanOut(t *testing.T) {
	tests := []struct {
		name       string
		author     string
		writerID   string
		actor      string
		recipients []string
	}{
		{
			name:       "distinct author and parent writer get one each",
			author:     "author-1",
			writerID:   "writer-1",
			actor:      "u1",
			recipients: []string{"author-1", "writer-1"},
		},
		{
			name:       "parent writer is the actor",
			author:     "author-1",
			writerID:   "u1",
			actor:      "u1",
			recipients: []string{"author-1"},
		},
		{
			name:       "parent writer is the author",
			author:     "author-1",
			writerID:   "author-1",
			actor:      "u1",
			recipients: []string{"author-1"},
		},
		{
			name:       "author is the actor",
			author:     "u1",
			writerID:   "writer-1",
			actor:      "u1",
			recipients: []string{"writer-1"},
		},
		{
			name:       "everyone is the actor",
			author:     "u1",
			writerID:   "u1",
			actor:      "u1",
			recipients: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reads := newFakeReader()
			reads.feeds["f1"] = contentAuthor(tt.author)
			reads.feedComments["c1"] = userProfile(tt.writerID)
			reads.users[tt.actor] = userProfile(tt.actor)
			writer := &fakeWriter{}
			e := newTestEngine(t, reads, writer)

			err := e.Handle(context.Background(), models.CommentEvent{
				ActorID:         tt.actor,
				FeedID:          "f1",
				ParentCommentID: "c1",
			})
			require.NoError(t, err)

			var recipients []string
			for _, n := range writer.written {
				assert.Equal(t, models.EventComment, n.Type)
				assert.Equal(t, "f1", n.FeedID)
				recipients = append(recipients, n.UserID)
			}
			assert.Equal(t, tt.recipients, recipients)
		})
	}
}

func TestHandleComment_MissingRows(t *testing.T) {
	reads := newFakeReader()
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	require.NoError(t, e.Handle(context.Background(), models.CommentEvent{ActorID: "u1", FeedID: "deleted"}))
	assert.Empty(t, writer.written)
}

func TestHandle_ReadErrorPropagates(t *testing.T) {
	reads := newFakeReader()
	reads.failingLookups["feed:f1"] = errors.New("connection reset")
	writer := &fakeWriter{}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.FeedLikeEvent{FeedID: "f1", LikeCount: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve feed author")
	assert.Empty(t, writer.written)
}

func TestHandle_WriteErrorPropagates(t *testing.T) {
	reads := newFakeReader()
	reads.users["u1"] = userProfile("u1")
	writer := &fakeWriter{err: errors.New("throttled")}
	e := newTestEngine(t, reads, writer)

	err := e.Handle(context.Background(), models.FollowEvent{ActorID: "u1", UserID: "u2"})
	assert.Error(t, err)
}
