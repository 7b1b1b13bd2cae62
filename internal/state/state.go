package state

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ProgressTracker records how many listing pages of a category have been fully
// captured, so an interrupted run can resume mid-category instead of starting
// over. Progress is cleared once the category's traversal finishes.
type ProgressTracker interface {
	CompletedPages(ctx context.Context, category string) (int, error)
	SetCompletedPages(ctx context.Context, category string, pages int) error
	Clear(ctx context.Context, category string) error
}

type redisProgressTracker struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisProgressTracker(redisClient *redis.Client) ProgressTracker {
	return &redisProgressTracker{
		redisClient: redisClient,
		keyPrefix:   "catalog:progress:pages:",
	}
}

func (t *redisProgressTracker) CompletedPages(ctx context.Context, category string) (int, error) {
	key := t.keyPrefix + category
	val, err := t.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil // No progress saved yet
		}
		return 0, fmt.Errorf("failed to get completed pages for category %s: %w", category, err)
	}

	pages, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse completed pages for category %s: %w", category, err)
	}

	return pages, nil
}

func (t *redisProgressTracker) SetCompletedPages(ctx context.Context, category string, pages int) error {
	key := t.keyPrefix + category
	if err := t.redisClient.Set(ctx, key, pages, 0).Err(); err != nil {
		return fmt.Errorf("failed to set completed pages for category %s: %w", category, err)
	}
	return nil
}

func (t *redisProgressTracker) Clear(ctx context.Context, category string) error {
	key := t.keyPrefix + category
	if err := t.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear progress for category %s: %w", category, err)
	}
	return nil
}
