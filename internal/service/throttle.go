package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
)

func loginFailureKey(email string) string {
	return "login_fail:" + strings.ToLower(strings.TrimSpace(email))
}

// RegisterFailedLogin 累加登入失敗次數，第一次失敗時開始計算鎖定視窗
func RegisterFailedLogin(ctx context.Context, c cache.Cache, email string, window time.Duration) (int64, error) {
	key := loginFailureKey(email)
	n, err := c.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// IsLockedOut 失敗次數達到 maxAttempts 即視為鎖定；maxAttempts <= 0 時停用鎖定
func IsLockedOut(ctx context.Context, c cache.Cache, email string, maxAttempts int) (bool, error) {
	if maxAttempts <= 0 {
		return false, nil
	}
	n, err := c.Get(ctx, loginFailureKey(email)).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= maxAttempts, nil
}

func ResetLoginFailures(ctx context.Context, c cache.Cache, email string) error {
	return c.Del(ctx, loginFailureKey(email)).Err()
}
