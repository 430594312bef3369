package ratelimit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
)

// Limits is the public view of the configured limits
type Limits struct {
	RequestsPerMinute  int  `json:"requests_per_minute"`
	SubmissionsPerHour int  `json:"submissions_per_hour"`
	Distributed        bool `json:"distributed"`
}

func (rl *RateLimiter) limits() Limits {
	return Limits{
		RequestsPerMinute:  rl.config.IPLimitPerMin,
		SubmissionsPerHour: rl.config.SubmitLimitPerHour,
		Distributed:        rl.redisClient.IsEnabled(),
	}
}

func timestamp() string { return time.Now().Format(time.RFC3339) }

// HandleRateLimitStatus returns the limits that apply to the caller
func (rl *RateLimiter) HandleRateLimitStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ip": c.ClientIP(), "limits": rl.limits(), "timestamp": timestamp()})
	}
}

// HandleAdminRateLimits returns limiter state and block counters
func (rl *RateLimiter) HandleAdminRateLimits() gin.HandlerFunc {
	return func(c *gin.Context) {
		keys, err := rl.GetKeyCount(c.Request.Context())
		if err != nil {
			_ = c.Error(apperrors.NewInternalError("failed to count rate limit keys", err))
			return
		}

		resp := gin.H{
			"limits":        rl.limits(),
			"total_keys":    keys,
			"limiter_stats": rl.GetStats(),
			"timestamp":     timestamp(),
		}
		if rl.metrics != nil {
			resp["metrics"] = rl.metrics.RateLimitStats()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleAdminInvalidateIP lifts every limit on one IP, e.g. after a
// classroom shared a NAT address during a test session.
func (rl *RateLimiter) HandleAdminInvalidateIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.Param("ip")
		if ip == "" {
			_ = c.Error(apperrors.NewValidationError("IP address is required"))
			return
		}

		if err := rl.InvalidateIP(c.Request.Context(), ip); err != nil {
			_ = c.Error(apperrors.NewInternalError("failed to invalidate IP rate limits", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "IP rate limits invalidated", "ip": ip, "timestamp": timestamp()})
	}
}
