package monitoring

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

var startTime = time.Now()

// Logger is the API's JSON logger. Each helper emits one event with a fixed
// message so log queries can match on msg.
type Logger struct {
	*slog.Logger
}

// NewLogger logs JSON to stdout at info level
func NewLogger() *Logger {
	return NewLoggerWithWriter(os.Stdout, slog.LevelInfo)
}

// NewLoggerWithWriter logs JSON to w with RFC 3339 timestamps
func NewLoggerWithWriter(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("timestamp", a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	})
	return &Logger{Logger: slog.New(handler)}
}

func (l *Logger) event(level slog.Level, msg string, attrs ...slog.Attr) {
	l.LogAttrs(context.Background(), level, msg, attrs...)
}

// RequestLogger records one served request
func (l *Logger) RequestLogger(method, path, ip, userAgent string, statusCode int, duration time.Duration) {
	l.event(slog.LevelInfo, "HTTP Request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("ip", ip),
		slog.String("user_agent", userAgent),
		slog.Int("status_code", statusCode),
		slog.Int64("duration_ms", duration.Milliseconds()),
	)
}

// ScoringLogger records a scoring run. subjects is 1 for a result, 2 for a
// pair and the member count for a team.
func (l *Logger) ScoringLogger(operation string, subjects int, mainOctant string, duration time.Duration) {
	l.event(slog.LevelInfo, "Scoring Completed",
		slog.String("operation", operation),
		slog.Int("subjects", subjects),
		slog.String("main_octant", mainOctant),
		slog.Int64("duration_us", duration.Microseconds()),
	)
}

// SubmissionLogger records a submitted test. Names and emails stay out of the log.
func (l *Logger) SubmissionLogger(resultID int64, passed bool, durationMs int64) {
	l.event(slog.LevelInfo, "Test Submitted",
		slog.Int64("result_id", resultID),
		slog.Bool("passed", passed),
		slog.Int64("test_duration_ms", durationMs),
	)
}

// APIErrorLogger records an error a handler attached to the request
func (l *Logger) APIErrorLogger(err error, method, path, ip string, statusCode int) {
	l.event(slog.LevelError, "API Error",
		slog.String("error", err.Error()),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("ip", ip),
		slog.Int("status_code", statusCode),
	)
}

// SecurityLogger records an admin action or a request that looks hostile
func (l *Logger) SecurityLogger(event, ip, userAgent string, details map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("event", event),
		slog.String("ip", ip),
		slog.String("user_agent", userAgent),
	}
	for key, value := range details {
		attrs = append(attrs, slog.Any(key, value))
	}
	l.event(slog.LevelWarn, "Security Event", attrs...)
}

// SystemLogger records background work such as retention purges
func (l *Logger) SystemLogger(event, details string) {
	l.event(slog.LevelInfo, "System Event",
		slog.String("event", event),
		slog.String("details", details),
		slog.Duration("uptime", time.Since(startTime)),
	)
}

// PerformanceLogger records a single measurement
func (l *Logger) PerformanceLogger(metric string, value float64, unit string) {
	l.event(slog.LevelInfo, "Performance Metric",
		slog.String("metric", metric),
		slog.Float64("value", value),
		slog.String("unit", unit),
	)
}
