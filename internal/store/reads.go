// internal/store/reads.go

// Package store holds the outbound boundary of the routing engine:
// point-query read helpers against PostgreSQL and the notification
// writer against DynamoDB.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"activity-notifier/internal/models"
)

// Reader provides the point lookups handlers need. A missing row is
// reported as (nil, nil): referenced entities may have been deleted
// between event emission and processing, and that is not an error.
type Reader struct {
	db *sql.DB
}

func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// UserProfile fetches a user's display attributes and subscription set.
func (r *Reader) UserProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	const query = `SELECT id, name, COALESCE(image, ''), profile_url, subscription FROM users WHERE id = $1`

	var u models.UserProfile
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Image, &u.ProfileURL, pq.Array(&u.Subscription),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user %s: %w", id, err)
	}
	return &u, nil
}

// FeedAuthor fetches a feed joined to its author's user row.
func (r *Reader) FeedAuthor(ctx context.Context, feedID string) (*models.ContentAuthor, error) {
	const query = `SELECT u.id, u.subscription, COALESCE(f.thumbnail, ''), f.title
		FROM feeds f
		INNER JOIN users u ON u.id = f.author_id
		WHERE f.id = $1`

	return r.scanContentAuthor(r.db.QueryRowContext(ctx, query, feedID), "feed", feedID)
}

// PostAuthor fetches a post joined to its author's user row.
func (r *Reader) PostAuthor(ctx context.Context, postID string) (*models.ContentAuthor, error) {
	const query = `SELECT u.id, u.subscription, COALESCE(p.thumbnail, ''), p.title
		FROM posts p
		INNER JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`

	return r.scanContentAuthor(r.db.QueryRowContext(ctx, query, postID), "post", postID)
}

// FeedCommentWriter fetches the user who wrote a feed comment.
func (r *Reader) FeedCommentWriter(ctx context.Context, commentID string) (*models.UserProfile, error) {
	const query = `SELECT u.id, u.name, COALESCE(u.image, ''), u.profile_url, u.subscription
		FROM feed_comments c
		INNER JOIN users u ON u.id = c.writer_id
		WHERE c.id = $1`

	return r.scanUserProfile(r.db.QueryRowContext(ctx, query, commentID), "feed comment", commentID)
}

// PostCommentWriter fetches the user who wrote a post comment.
func (r *Reader) PostCommentWriter(ctx context.Context, commentID string) (*models.UserProfile, error) {
	const query = `SELECT u.id, u.name, COALESCE(u.image, ''), u.profile_url, u.subscription
		FROM post_comments c
		INNER JOIN users u ON u.id = c.writer_id
		WHERE c.id = $1`

	return r.scanUserProfile(r.db.QueryRowContext(ctx, query, commentID), "post comment", commentID)
}

func (r *Reader) scanContentAuthor(row *sql.Row, kind, id string) (*models.ContentAuthor, error) {
	var a models.ContentAuthor
	err := row.Scan(&a.ID, pq.Array(&a.Subscription), &a.Thumbnail, &a.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", kind, id, err)
	}
	return &a, nil
}

func (r *Reader) scanUserProfile(row *sql.Row, kind, id string) (*models.UserProfile, error) {
	var u models.UserProfile
	err := row.Scan(&u.ID, &u.Name, &u.Image, &u.ProfileURL, pq.Array(&u.Subscription))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query %s %s: %w", kind, id, err)
	}
	return &u, nil
}
