package dispatch

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// BadgeCounter tracks the per-user unread badge count in redis. The count
// survives restarts so the app icon badge stays consistent across sessions.
type BadgeCounter struct {
	redis *redis.Client
}

func NewBadgeCounter(redisClient *redis.Client) *BadgeCounter {
	return &BadgeCounter{redis: redisClient}
}

func badgeKey(userID string) string {
	return fmt.Sprintf("badge:%s", userID)
}

// Increment bumps the badge count and returns the new value.
func (b *BadgeCounter) Increment(ctx context.Context, userID string) (int64, error) {
	return b.redis.Incr(ctx, badgeKey(userID)).Result()
}

// Get returns the current badge count, zero when never set.
func (b *BadgeCounter) Get(ctx context.Context, userID string) (int64, error) {
	count, err := b.redis.Get(ctx, badgeKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

// Reset clears the badge count, e.g. when the user opens the app.
func (b *BadgeCounter) Reset(ctx context.Context, userID string) error {
	return b.redis.Del(ctx, badgeKey(userID)).Err()
}
