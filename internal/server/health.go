package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type componentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// handleHealth reports liveness and the state of each component
//
//	@Summary	Health check
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Failure	503	{object}	map[string]interface{}
//	@Router		/health [get]
func (s *Server) handleHealth(c *gin.Context) {
	components := map[string]componentStatus{}
	status := "ok"
	code := http.StatusOK

	if s.db != nil {
		if err := s.db.HealthCheck(c.Request.Context()); err != nil {
			components["database"] = componentStatus{Status: "down", Error: err.Error()}
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			components["database"] = componentStatus{Status: "up"}
		}
	} else {
		components["database"] = componentStatus{Status: "disabled"}
	}

	if s.limiter != nil {
		if distributed, _ := s.limiter.GetStats()["redis_enabled"].(bool); distributed {
			components["rate_limiter"] = componentStatus{Status: "redis"}
		} else {
			components["rate_limiter"] = componentStatus{Status: "memory"}
		}
	}

	if s.journal != nil {
		components["journal"] = componentStatus{Status: "up"}
	}

	cacheStatus := "disabled"
	if s.cache.Enabled() {
		cacheStatus = "up"
	}
	components["cache"] = componentStatus{Status: cacheStatus}

	c.JSON(code, gin.H{
		"status":     status,
		"timestamp":  time.Now().Format(time.RFC3339),
		"version":    version,
		"components": components,
	})
}

// handleMetrics returns the request and scoring counters
//
//	@Summary	Metrics snapshot
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/metrics [get]
func (s *Server) handleMetrics(c *gin.Context) {
	stats := s.metrics.GetStats()
	if s.db != nil {
		stats["database_pool"] = s.db.GetPoolStats()
	}
	stats["compression"] = s.compress.GetStats()
	c.JSON(http.StatusOK, stats)
}

// handleCacheStats returns the response cache state
//
//	@Summary	Cache statistics
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Router		/cache/stats [get]
func (s *Server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.cache.Stats())
}
