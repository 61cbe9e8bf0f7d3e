package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckAndSetRateLimit reserves the action key for the limit window. It
// returns false when the window is still held. A nil client disables
// throttling entirely.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, action string, limit time.Duration) (bool, error) {
	if rdb == nil || limit <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("rate_limit:%s", action)

	wasSet, err := rdb.SetNX(ctx, key, "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// ClearRateLimit releases the action key before its window elapses.
func ClearRateLimit(ctx context.Context, rdb *redis.Client, action string) error {
	if rdb == nil {
		return nil
	}
	key := fmt.Sprintf("rate_limit:%s", action)
	_, err := rdb.Del(ctx, key).Result()
	return err
}
