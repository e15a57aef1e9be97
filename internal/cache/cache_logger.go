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

func PollKey(id uint) string { return fmt.Sprintf("id:%d", id) }

func PostKey(id uint) string { return fmt.Sprintf("id:%d", id) }

func CategoryKey(id uint) string { return fmt.Sprintf("category:%d", id) }

func CategorySlugKey(slug string) string { return "category:slug:" + slug }

func ProductKey(id uint) string { return fmt.Sprintf("product:%d", id) }

func SettingKey(key string) string { return "key:" + key }

func PollStatsKey(id uint) string { return fmt.Sprintf("poll:%d", id) }

// InvalidatePollCache drops a poll definition and its statistics
func InvalidatePollCache(ctx context.Context, cm *CacheManager, pollID uint) {
	SafeDelete(ctx, cm.Poll, PollKey(pollID))
	SafeDelete(ctx, cm.Stats, PollStatsKey(pollID))
}

func InvalidatePostCache(ctx context.Context, cm *CacheManager, postID uint) {
	SafeDelete(ctx, cm.Post, PostKey(postID))
}

// InvalidateCategoryCache drops every cached category, since slugs and children change together
func InvalidateCategoryCache(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.Catalog, "category:*")
}

func InvalidateProductCache(ctx context.Context, cm *CacheManager, productID uint) {
	SafeDelete(ctx, cm.Catalog, ProductKey(productID))
}

func InvalidateSettingCache(ctx context.Context, cm *CacheManager, keys ...string) {
	cacheKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		cacheKeys = append(cacheKeys, SettingKey(k))
	}
	SafeDelete(ctx, cm.Setting, cacheKeys...)
}
