package monitoring

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/montanaflynn/stats"
)

const responseSampleSize = 1000

// Metrics holds process-wide counters for the scoring API
type Metrics struct {
	RequestCount int64
	ErrorCount   int64
	CacheHits    int64
	CacheMisses  int64
	StartTime    time.Time

	// Scoring counters
	ResultsScored       int64
	PairsAnalyzed       int64
	TeamsAnalyzed       int64
	Submissions         int64
	SubmissionsRejected int64
	DecodeFailures      int64

	// Last responseSampleSize response times for percentiles
	responseTimes []time.Duration
	responseMutex sync.RWMutex

	requestCountByStatus map[int]int64
	statusMutex          sync.RWMutex

	// Rate limit metrics
	RateLimitIPBlocks     int64
	RateLimitSubmitBlocks int64
	RateLimitRedisErrors  int64
	RateLimitFallback     int64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:            time.Now(),
		responseTimes:        make([]time.Duration, 0, responseSampleSize),
		requestCountByStatus: make(map[int]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

func (m *Metrics) IncrementResultsScored() {
	atomic.AddInt64(&m.ResultsScored, 1)
}

func (m *Metrics) IncrementPairsAnalyzed() {
	atomic.AddInt64(&m.PairsAnalyzed, 1)
}

func (m *Metrics) IncrementTeamsAnalyzed() {
	atomic.AddInt64(&m.TeamsAnalyzed, 1)
}

// RecordSubmission counts a submitted test; rejected ones did not pass the threshold.
func (m *Metrics) RecordSubmission(passed bool) {
	atomic.AddInt64(&m.Submissions, 1)
	if !passed {
		atomic.AddInt64(&m.SubmissionsRejected, 1)
	}
}

func (m *Metrics) IncrementDecodeFailure() {
	atomic.AddInt64(&m.DecodeFailures, 1)
}

// RecordResponseTime keeps a bounded window of response times
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	m.responseMutex.Lock()
	defer m.responseMutex.Unlock()

	m.responseTimes = append(m.responseTimes, duration)
	if len(m.responseTimes) > responseSampleSize {
		m.responseTimes = m.responseTimes[1:]
	}
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.statusMutex.Lock()
	defer m.statusMutex.Unlock()
	m.requestCountByStatus[statusCode]++
}

func (m *Metrics) IncrementRateLimitIPBlock() {
	atomic.AddInt64(&m.RateLimitIPBlocks, 1)
}

func (m *Metrics) IncrementRateLimitSubmitBlock() {
	atomic.AddInt64(&m.RateLimitSubmitBlocks, 1)
}

func (m *Metrics) IncrementRateLimitRedisError() {
	atomic.AddInt64(&m.RateLimitRedisErrors, 1)
}

func (m *Metrics) IncrementRateLimitFallback() {
	atomic.AddInt64(&m.RateLimitFallback, 1)
}

func (m *Metrics) responseSamplesMs() stats.Float64Data {
	m.responseMutex.RLock()
	defer m.responseMutex.RUnlock()

	samples := make(stats.Float64Data, len(m.responseTimes))
	for i, d := range m.responseTimes {
		samples[i] = float64(d) / float64(time.Millisecond)
	}
	return samples
}

// PercentileResponseTime returns the given percentile of the sampled response times in milliseconds
func (m *Metrics) PercentileResponseTime(percentile float64) float64 {
	samples := m.responseSamplesMs()
	if len(samples) == 0 {
		return 0
	}
	p, err := stats.PercentileNearestRank(samples, percentile)
	if err != nil {
		return 0
	}
	return p
}

// AverageResponseTime returns the mean sampled response time in milliseconds
func (m *Metrics) AverageResponseTime() float64 {
	samples := m.responseSamplesMs()
	if len(samples) == 0 {
		return 0
	}
	mean, err := stats.Mean(samples)
	if err != nil {
		return 0
	}
	return mean
}

// StatusCodeDistribution returns request count by status code
func (m *Metrics) StatusCodeDistribution() map[int]int64 {
	m.statusMutex.RLock()
	defer m.statusMutex.RUnlock()

	distribution := make(map[int]int64, len(m.requestCountByStatus))
	for code, count := range m.requestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

// RateLimitStats returns rate limiting counters
func (m *Metrics) RateLimitStats() map[string]interface{} {
	return map[string]interface{}{
		"ip_blocks":      atomic.LoadInt64(&m.RateLimitIPBlocks),
		"submit_blocks":  atomic.LoadInt64(&m.RateLimitSubmitBlocks),
		"redis_errors":   atomic.LoadInt64(&m.RateLimitRedisErrors),
		"fallback_count": atomic.LoadInt64(&m.RateLimitFallback),
	}
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHitRate := float64(0)
	if total := cacheHits + cacheMisses; total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":         time.Since(m.StartTime).Seconds(),
		"start_time":             m.StartTime.Format(time.RFC3339),
		"total_requests":         requests,
		"error_count":            errors,
		"error_rate_percent":     errorRate,
		"cache_hits":             cacheHits,
		"cache_misses":           cacheMisses,
		"cache_hit_rate_percent": cacheHitRate,

		"results_scored":       atomic.LoadInt64(&m.ResultsScored),
		"pairs_analyzed":       atomic.LoadInt64(&m.PairsAnalyzed),
		"teams_analyzed":       atomic.LoadInt64(&m.TeamsAnalyzed),
		"submissions":          atomic.LoadInt64(&m.Submissions),
		"submissions_rejected": atomic.LoadInt64(&m.SubmissionsRejected),
		"decode_failures":      atomic.LoadInt64(&m.DecodeFailures),

		"avg_response_time_ms":     m.AverageResponseTime(),
		"p50_response_time_ms":     m.PercentileResponseTime(50),
		"p95_response_time_ms":     m.PercentileResponseTime(95),
		"p99_response_time_ms":     m.PercentileResponseTime(99),
		"status_code_distribution": m.StatusCodeDistribution(),
		"rate_limit":               m.RateLimitStats(),
	}
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	for _, counter := range []*int64{
		&m.RequestCount, &m.ErrorCount, &m.CacheHits, &m.CacheMisses,
		&m.ResultsScored, &m.PairsAnalyzed, &m.TeamsAnalyzed,
		&m.Submissions, &m.SubmissionsRejected, &m.DecodeFailures,
		&m.RateLimitIPBlocks, &m.RateLimitSubmitBlocks, &m.RateLimitRedisErrors, &m.RateLimitFallback,
	} {
		atomic.StoreInt64(counter, 0)
	}

	m.responseMutex.Lock()
	m.responseTimes = m.responseTimes[:0]
	m.responseMutex.Unlock()

	m.statusMutex.Lock()
	m.requestCountByStatus = make(map[int]int64)
	m.statusMutex.Unlock()

	m.StartTime = time.Now()
}
