package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
)

// IPRateLimitMiddleware applies the per-minute limit to every request
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return rl.enforce("X-RateLimit", rl.AllowIP, func() {
		if rl.metrics != nil {
			rl.metrics.IncrementRateLimitIPBlock()
		}
	})
}

// SubmitRateLimitMiddleware limits how often one IP can store results
func (rl *RateLimiter) SubmitRateLimitMiddleware() gin.HandlerFunc {
	return rl.enforce("X-RateLimit-Submit", rl.AllowSubmission, func() {
		if rl.metrics != nil {
			rl.metrics.IncrementRateLimitSubmitBlock()
		}
	})
}

// enforce runs allow for the client IP and publishes the outcome under the
// header prefix. A limiter failure lets the request through.
func (rl *RateLimiter) enforce(prefix string, allow func(context.Context, string) (*Result, error), blocked func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := allow(c.Request.Context(), ip)
		if err != nil {
			slog.Error("Rate limit check failed", "ip", ip, "limit", prefix, "error", err)
			c.Next()
			return
		}

		c.Header(prefix+"-Limit", strconv.Itoa(result.Limit))
		c.Header(prefix+"-Remaining", strconv.Itoa(result.Remaining))
		c.Header(prefix+"-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if result.Allowed {
			c.Next()
			return
		}

		blocked()
		retryAfter := strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds())))
		c.Header("Retry-After", retryAfter)

		appErr := apperrors.NewRateLimitError(retryAfter)
		apperrors.LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
	}
}
