package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateRatingCache drops the aggregated rating for a reviewer and
// any stats derived from it.
func InvalidateRatingCache(ctx context.Context, cm *CacheManager, reviewerID uint) {
	SafeDelete(ctx, cm.Rating, fmt.Sprintf("reviewer:%d", reviewerID))
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("rating:%d:*", reviewerID))
	SafeInvalidatePattern(ctx, cm.Rating, "leaderboard:*")
}

// InvalidateThreadCache drops cached thread listings after a question or
// answer mutation.
func InvalidateThreadCache(ctx context.Context, cm *CacheManager, questionID uint) {
	SafeDelete(ctx, cm.Thread, fmt.Sprintf("question:%d", questionID))
	SafeInvalidatePattern(ctx, cm.Thread, "list:*")
}

// InvalidateUserCache drops cached user records after a role or profile change.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID uint) {
	SafeDelete(ctx, cm.User, fmt.Sprintf("id:%d", userID))
	SafeInvalidatePattern(ctx, cm.User, "list:*")
}
