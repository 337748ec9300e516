package leavetype

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const ActiveTypesCacheKey = "leave_types:active"

func invalidateActiveCache(ctx context.Context, rdb *redis.Client, logger *zap.Logger) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, ActiveTypesCacheKey).Err(); err != nil {
		logger.Error("failed to invalidate leave type cache",
			zap.Error(err),
			zap.String("key", ActiveTypesCacheKey),
		)
	}
}
