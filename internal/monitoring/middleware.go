package monitoring

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	slowRequestThreshold = 5 * time.Second
	maxScoringBodyBytes  = 64 << 10
)

// RequestIDHeader carries the id that ties a request to its log lines
const RequestIDHeader = "X-Request-ID"

// MonitoringMiddleware assigns a request id when the client sent none,
// then records timing and status for every request.
func MonitoringMiddleware(metrics *Metrics, logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncrementRequest()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set(RequestIDHeader, requestID)
		}
		c.Header(RequestIDHeader, requestID)

		req := c.Request
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		metrics.RecordResponseTime(elapsed)
		metrics.RecordRequestByStatus(status)

		logger.RequestLogger(req.Method, req.URL.Path, c.ClientIP(), req.UserAgent(), status, elapsed)
		switch {
		case status >= http.StatusInternalServerError:
			metrics.IncrementError()
			logger.SystemLogger("server_error", fmt.Sprintf("%d for %s %s (request %s)", status, req.Method, req.URL.Path, requestID))
		case status >= http.StatusBadRequest:
			metrics.IncrementError()
		}

		for _, err := range c.Errors {
			logger.APIErrorLogger(err.Err, req.Method, req.URL.Path, c.ClientIP(), status)
		}
		if elapsed > slowRequestThreshold {
			logger.PerformanceLogger("slow_request", elapsed.Seconds(), "seconds")
		}
	}
}

// suspicion inspects a request and names what looks wrong with it
type suspicion func(r *http.Request) (kind string, evidence interface{}, hit bool)

var suspicions = []suspicion{
	func(r *http.Request) (string, interface{}, bool) {
		return "potential_sql_injection", r.URL.RawQuery, containsSQLInjectionPatterns(r.URL.RawQuery)
	},
	func(r *http.Request) (string, interface{}, bool) {
		oversized := r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/v1/") &&
			r.ContentLength > maxScoringBodyBytes
		return "large_request_body", r.ContentLength, oversized
	},
	func(r *http.Request) (string, interface{}, bool) {
		return "suspicious_user_agent", r.UserAgent(), containsSuspiciousUserAgent(r.UserAgent())
	},
}

// SecurityMonitoringMiddleware logs requests that look hostile. It
// never blocks; rejection is left to the rate limiter and security middleware.
func SecurityMonitoringMiddleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		details := map[string]interface{}{}
		for _, check := range suspicions {
			if kind, evidence, hit := check(c.Request); hit {
				details[kind] = evidence
			}
		}

		if len(details) > 0 {
			logger.SecurityLogger("suspicious_activity_detected", c.ClientIP(), c.Request.UserAgent(), details)
		}
		c.Next()
	}
}

var sqlInjectionPatterns = []string{
	"union select",
	"union all",
	"select * from",
	"drop table",
	"delete from",
	"';--",
	"/*",
	"*/",
	" xp_",
	" sp_",
}

var suspiciousAgents = []string{
	"sqlmap",
	"nmap",
	"masscan",
	"zmap",
	"dirbuster",
	"gobuster",
	"nikto",
	"acunetix",
	"openvas",
	"nessus",
}

func containsSQLInjectionPatterns(query string) bool {
	if decoded, err := url.QueryUnescape(query); err == nil {
		query = decoded
	}
	return containsAny(query, sqlInjectionPatterns)
}

func containsSuspiciousUserAgent(userAgent string) bool {
	return containsAny(userAgent, suspiciousAgents)
}

func containsAny(s string, patterns []string) bool {
	s = strings.ToLower(s)
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
