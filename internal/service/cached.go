package service

import (
	"context"
	"errors"

	"shoe-storefront/internal/cache"

	"go.uber.org/zap"
)

func listScope(activeOnly bool) string {
	if activeOnly {
		return "active"
	}
	return "all"
}

// cached serves key from the cache, loading and storing it on a miss.
// Cache failures are logged and never fail the call.
func cached[T any](ctx context.Context, c cache.Cache, logger *zap.Logger, key string, load func() (T, error)) (T, error) {
	var value T
	err := c.Get(ctx, key, &value)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err = load()
	if err != nil {
		var zero T
		return zero, err
	}

	if err := c.Set(ctx, key, value); err != nil {
		logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

func invalidate(ctx context.Context, c cache.Cache, logger *zap.Logger, prefix string) {
	if err := c.InvalidatePrefix(ctx, prefix); err != nil {
		logger.Warn("Cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
	}
}
