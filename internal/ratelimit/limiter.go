package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"golang.org/x/time/rate"

	"github.com/ZanzyTHEbar/teamconstructor/internal/monitoring"
	"github.com/ZanzyTHEbar/teamconstructor/internal/resilience"
)

const keyPrefix = "cti:ratelimit:"

// Config holds rate limiter configuration
type Config struct {
	IPLimitPerMin      int           // requests per minute for every API call
	SubmitLimitPerHour int           // stored submissions per hour per IP
	CleanupInterval    time.Duration // how often idle in-memory limiters are dropped
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		IPLimitPerMin:      60,
		SubmitLimitPerHour: 10,
		CleanupInterval:    time.Hour,
	}
}

// Rate is a number of requests allowed per period
type Rate struct {
	Limit  int
	Period time.Duration
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type fallbackEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter uses redis_rate when Redis is reachable and falls back to an
// in-memory token bucket per key otherwise.
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	breaker      *resilience.CircuitBreaker
	config       Config
	metrics      *monitoring.Metrics

	fallbackLimiters map[string]*fallbackEntry
	fallbackMutex    sync.Mutex

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a new rate limiter. redisClient may be nil.
func NewRateLimiter(redisClient *RedisClient, config Config, metrics *monitoring.Metrics) *RateLimiter {
	if redisClient == nil {
		redisClient = &RedisClient{}
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Hour
	}

	rl := &RateLimiter{
		redisClient:      redisClient,
		breaker:          resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 5, RecoveryTimeout: 30 * time.Second}),
		config:           config,
		metrics:          metrics,
		fallbackLimiters: make(map[string]*fallbackEntry),
		stop:             make(chan struct{}),
	}

	if redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.GetClient())
		slog.Info("Redis rate limiter initialized")
	} else {
		slog.Warn("Redis unavailable, using in-memory rate limiting only")
	}

	go rl.cleanupLoop()

	return rl
}

// Close stops the background cleanup
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Config returns the limits in effect
func (rl *RateLimiter) Config() Config {
	return rl.config
}

func ipKey(ip string) string {
	return keyPrefix + "ip:" + ip
}

func submitKey(ip string) string {
	return keyPrefix + "submit:" + ip
}

// AllowIP checks the per-minute limit of an IP address
func (rl *RateLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	return rl.Allow(ctx, ipKey(ip), Rate{Limit: rl.config.IPLimitPerMin, Period: time.Minute})
}

// AllowSubmission checks the hourly limit on stored submissions of an IP address
func (rl *RateLimiter) AllowSubmission(ctx context.Context, ip string) (*Result, error) {
	return rl.Allow(ctx, submitKey(ip), Rate{Limit: rl.config.SubmitLimitPerHour, Period: time.Hour})
}

// Allow performs a rate limit check for an arbitrary key
func (rl *RateLimiter) Allow(ctx context.Context, key string, r Rate) (*Result, error) {
	if r.Limit <= 0 || r.Period <= 0 {
		return nil, fmt.Errorf("invalid rate %d per %s", r.Limit, r.Period)
	}
	if rl.redisLimiter != nil {
		var result *Result
		err := rl.breaker.Call(func() (err error) {
			result, err = rl.allowRedis(ctx, key, r)
			return err
		})
		if err == nil {
			return result, nil
		}

		// an open circuit skips Redis without counting another failure
		var open *resilience.CircuitBreakerError
		if !errors.As(err, &open) {
			slog.Warn("Redis rate limit check failed, using fallback", "key", key, "error", err)
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitRedisError()
			}
		}
	}

	if rl.metrics != nil {
		rl.metrics.IncrementRateLimitFallback()
	}
	return rl.allowFallback(key, r), nil
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string, r Rate) (*Result, error) {
	res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   r.Limit,
		Burst:  r.Limit,
		Period: r.Period,
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: res.RetryAfter,
	}, nil
}

// allowFallback uses a token bucket refilled at Limit per Period with a burst of Limit.
func (rl *RateLimiter) allowFallback(key string, r Rate) *Result {
	now := time.Now()

	rl.fallbackMutex.Lock()
	entry, exists := rl.fallbackLimiters[key]
	if !exists {
		entry = &fallbackEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(r.Limit)/r.Period.Seconds()), r.Limit),
		}
		rl.fallbackLimiters[key] = entry
	}
	entry.lastSeen = now
	rl.fallbackMutex.Unlock()

	result := &Result{
		Allowed: entry.limiter.AllowN(now, 1),
		Limit:   r.Limit,
	}

	tokens := entry.limiter.TokensAt(now)
	if tokens > 0 {
		result.Remaining = int(tokens)
	}

	// time until the bucket is full again
	missing := float64(r.Limit) - tokens
	result.ResetAt = now.Add(time.Duration(missing / float64(entry.limiter.Limit()) * float64(time.Second)))

	if !result.Allowed {
		result.RetryAfter = time.Duration((1 - tokens) / float64(entry.limiter.Limit()) * float64(time.Second))
	}

	return result
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			if removed := rl.cleanupIdle(time.Now().Add(-rl.config.CleanupInterval)); removed > 0 {
				slog.Info("Cleaned up idle fallback rate limiters", "count", removed)
			}
		}
	}
}

// cleanupIdle drops in-memory limiters not used since the cutoff
func (rl *RateLimiter) cleanupIdle(cutoff time.Time) int {
	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	removed := 0
	for key, entry := range rl.fallbackLimiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.fallbackLimiters, key)
			removed++
		}
	}
	return removed
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.fallbackMutex.Lock()
	fallbackCount := len(rl.fallbackLimiters)
	rl.fallbackMutex.Unlock()

	stats := map[string]interface{}{
		"redis_enabled":         rl.redisClient.IsEnabled(),
		"fallback_limiters":     fallbackCount,
		"ip_limit_per_min":      rl.config.IPLimitPerMin,
		"submit_limit_per_hour": rl.config.SubmitLimitPerHour,
	}

	if rl.redisClient.IsEnabled() {
		stats["redis_pool"] = rl.redisClient.GetPoolStats()
		stats["redis_circuit"] = rl.breaker.Stats()
	}

	return stats
}
