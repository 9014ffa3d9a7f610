// internal/store/dedup.go
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"activity-notifier/internal/models"
)

// DedupGuard suppresses duplicate writes caused by queue redelivery.
// The key is deterministic over kind, actor, target and a coarse time
// bucket, claimed with SetNX. This guard is an opt-in addition: the
// upstream contract is at-least-once and accepts duplicates.
type DedupGuard struct {
	client *redis.Client
	window time.Duration
}

func NewDedupGuard(client *redis.Client, window time.Duration) *DedupGuard {
	return &DedupGuard{client: client, window: window}
}

// FirstDelivery claims the notification's dedup key. It returns false
// when an equivalent notification was already written inside the
// current window.
func (g *DedupGuard) FirstDelivery(ctx context.Context, n *models.Notification) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(n), 1, g.window).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

func (g *DedupGuard) key(n *models.Notification) string {
	actorID := ""
	if n.Actor != nil {
		actorID = n.Actor.ID
	}
	bucket := n.CreatedAt.UTC().Truncate(g.window).Unix()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", n.Type, actorID, n.TargetID(), bucket)))
	return "notification:dedup:" + hex.EncodeToString(sum[:])
}
