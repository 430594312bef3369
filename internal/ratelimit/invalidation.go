package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// InvalidateIP removes every limit tracked for an IP address
func (rl *RateLimiter) InvalidateIP(ctx context.Context, ip string) error {
	if !rl.redisClient.IsEnabled() {
		removed := rl.deleteFallback(func(key string) bool {
			return key == ipKey(ip) || key == submitKey(ip)
		})
		slog.Info("Invalidated IP rate limits (in-memory)", "ip", ip, "count", removed)
		return nil
	}

	if _, err := rl.deleteByPattern(ctx, ipKey(ip)); err != nil {
		return err
	}
	_, err := rl.deleteByPattern(ctx, submitKey(ip))
	return err
}

// InvalidateAll removes all rate limit keys
func (rl *RateLimiter) InvalidateAll(ctx context.Context) error {
	if !rl.redisClient.IsEnabled() {
		removed := rl.deleteFallback(func(string) bool { return true })
		slog.Warn("Invalidated all rate limits (in-memory)", "count", removed)
		return nil
	}

	slog.Warn("Invalidating all rate limits", "pattern", keyPrefix+"*")
	_, err := rl.deleteByPattern(ctx, keyPrefix+"*")
	return err
}

// GetKeyCount returns how many limiter keys are currently tracked
func (rl *RateLimiter) GetKeyCount(ctx context.Context) (int, error) {
	if !rl.redisClient.IsEnabled() {
		rl.fallbackMutex.Lock()
		defer rl.fallbackMutex.Unlock()
		return len(rl.fallbackLimiters), nil
	}

	var (
		cursor uint64
		count  int
	)
	client := rl.redisClient.GetClient()
	for {
		keys, next, err := client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan keys: %w", err)
		}
		count += len(keys)
		if cursor = next; cursor == 0 {
			return count, nil
		}
	}
}

func (rl *RateLimiter) deleteFallback(match func(key string) bool) int {
	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	removed := 0
	for key := range rl.fallbackLimiters {
		if match(key) {
			delete(rl.fallbackLimiters, key)
			removed++
		}
	}
	return removed
}

// deleteByPattern deletes all Redis keys matching a SCAN pattern
func (rl *RateLimiter) deleteByPattern(ctx context.Context, pattern string) (int, error) {
	client := rl.redisClient.GetClient()

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			n, err := client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += int(n)
		}

		if cursor = next; cursor == 0 {
			break
		}
	}

	slog.Info("Deleted rate limit keys", "pattern", strings.TrimPrefix(pattern, keyPrefix), "count", deleted)
	return deleted, nil
}
