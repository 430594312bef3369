package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// ErrorCategory groups errors by how the API answers them
type ErrorCategory string

const (
	CategoryValidation    ErrorCategory = "validation"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryUnauthorized  ErrorCategory = "unauthorized"
	CategoryTimeout       ErrorCategory = "timeout"
	CategoryRateLimit     ErrorCategory = "rate_limit"
	CategoryInternal      ErrorCategory = "internal"
	CategoryConfiguration ErrorCategory = "configuration"
)

// AppError is an errbuilder error annotated for the HTTP response
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
	RequestID  string        `json:"request_id,omitempty"`
	StackTrace string        `json:"stack_trace,omitempty"`
}

type kind struct {
	category ErrorCategory
	status   int
	label    string
}

// classify maps an errbuilder code onto the API's categories. Codes the API
// never produces itself fall through to internal.
func classify(b *errbuilder.ErrBuilder) kind {
	switch b.ErrCode() {
	case errbuilder.CodeInvalidArgument:
		return kind{CategoryValidation, http.StatusBadRequest, "VALIDATION_ERROR"}
	case errbuilder.CodeNotFound:
		return kind{CategoryNotFound, http.StatusNotFound, "NOT_FOUND"}
	case errbuilder.CodeUnauthenticated:
		return kind{CategoryUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"}
	case errbuilder.CodeDeadlineExceeded:
		return kind{CategoryTimeout, http.StatusGatewayTimeout, "TIMEOUT_ERROR"}
	case errbuilder.CodeResourceExhausted:
		return kind{CategoryRateLimit, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"}
	case errbuilder.CodeFailedPrecondition:
		return kind{CategoryConfiguration, http.StatusInternalServerError, "CONFIGURATION_ERROR"}
	default:
		return kind{CategoryInternal, http.StatusInternalServerError, "INTERNAL_ERROR"}
	}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", classify(e.ErrBuilder).label, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

type errorBody struct {
	Code       errbuilder.ErrCode `json:"code"`
	Label      string             `json:"label"`
	Message    string             `json:"message"`
	Details    map[string]string  `json:"details,omitempty"`
	Cause      string             `json:"cause,omitempty"`
	Category   ErrorCategory      `json:"category"`
	HTTPStatus int                `json:"http_status"`
	Timestamp  time.Time          `json:"timestamp"`
	RequestID  string             `json:"request_id,omitempty"`
	StackTrace string             `json:"stack_trace,omitempty"`
}

// MarshalJSON renders the response body. It replaces the embedded builder's
// encoder, which requires a cause. Causes are only shown outside release mode.
func (e *AppError) MarshalJSON() ([]byte, error) {
	body := errorBody{
		Code:       e.ErrBuilder.ErrCode(),
		Label:      classify(e.ErrBuilder).label,
		Message:    e.ErrBuilder.Msg,
		Category:   e.Category,
		HTTPStatus: e.HTTPStatus,
		Timestamp:  e.Timestamp,
		RequestID:  e.RequestID,
		StackTrace: e.StackTrace,
	}

	if fields := e.ErrBuilder.Details.Errors; len(fields) > 0 {
		body.Details = make(map[string]string, len(fields))
		for field, err := range fields {
			body.Details[field] = detailMessage(err)
		}
	}
	if cause := e.ErrBuilder.Cause; cause != nil && gin.Mode() != gin.ReleaseMode {
		body.Cause = cause.Error()
	}

	return json.Marshal(body)
}

func detailMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) {
		return builder.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func wrap(builder *errbuilder.ErrBuilder) *AppError {
	k := classify(builder)
	return &AppError{
		ErrBuilder: builder,
		Category:   k.category,
		HTTPStatus: k.status,
		Timestamp:  time.Now(),
	}
}

func detailed(builder *errbuilder.ErrBuilder, field string, detail error) *errbuilder.ErrBuilder {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set(field, detail)
	return builder.WithDetails(errbuilder.NewErrDetails(errorMap))
}

func withCause(builder *errbuilder.ErrBuilder, cause error) *errbuilder.ErrBuilder {
	if cause == nil {
		return builder
	}
	return builder.WithCause(cause)
}

// NewValidationError rejects malformed input. The first detail, if any, is
// reported under validation_details.
func NewValidationError(message string, details ...interface{}) *AppError {
	builder := errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg(message)
	if len(details) > 0 {
		builder = detailed(builder, "validation_details", fmt.Errorf("%v", details[0]))
	}
	return wrap(builder)
}

// NewValidationErrorWithMap reports one message per offending field
func NewValidationErrorWithMap(fields map[string]string) *AppError {
	errorMap := errbuilder.ErrorMap{}
	for field, message := range fields {
		errorMap.Set(field, errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg(message))
	}

	return wrap(errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("Multiple validation errors").
		WithDetails(errbuilder.NewErrDetails(errorMap)))
}

// NewNotFoundError reports a missing stored resource
func NewNotFoundError(resource string, id interface{}) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("%s not found", resource))
	return wrap(detailed(builder, resource, fmt.Errorf("%v", id)))
}

// NewUnauthorizedError rejects a request without valid admin credentials
func NewUnauthorizedError(message string, cause error) *AppError {
	return wrap(withCause(errbuilder.New().WithCode(errbuilder.CodeUnauthenticated).WithMsg(message), cause))
}

func NewTimeoutError(message string, cause error) *AppError {
	return wrap(withCause(errbuilder.New().WithCode(errbuilder.CodeDeadlineExceeded).WithMsg(message), cause))
}

// NewRateLimitError carries the retry delay in seconds
func NewRateLimitError(retryAfter string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("Rate limit exceeded")
	return wrap(detailed(builder, "retry_after", errors.New(retryAfter)))
}

// NewInternalError hides message from the client message but keeps it in the
// details. Debug and test builds also carry the stack.
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("Internal server error")
	appErr := wrap(withCause(detailed(builder, "internal_details", errors.New(message)), cause))

	if gin.Mode() != gin.ReleaseMode {
		appErr.StackTrace = stackTrace()
	}
	return appErr
}

// NewConfigurationError reports a dependency the server was started without
func NewConfigurationError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("Configuration error")
	return wrap(withCause(detailed(builder, "config_details", errors.New(message)), cause))
}

func stackTrace() string {
	buf := make([]byte, 4096)
	return string(buf[:runtime.Stack(buf, false)])
}

// ErrorHandler renders the last error a handler attached with c.Error,
// unless the handler already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := ToAppError(c.Errors.Last().Err)
		appErr.RequestID = c.GetHeader("X-Request-ID")
		LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)

		// gin records a failed render in c.Errors and leaves the body empty
		if !c.Writer.Written() {
			fallback := NewInternalError("Failed to render error response", c.Errors.Last().Err)
			fallback.RequestID = appErr.RequestID
			LogError(c, fallback)
			c.JSON(fallback.HTTPStatus, fallback)
		}
	}
}

// RecoveryHandler turns a panic into a 500 with the AppError body
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		appErr := NewInternalError(fmt.Sprintf("Panic recovered: %v", recovered), fmt.Errorf("%v", recovered))
		appErr.StackTrace = stackTrace()
		appErr.RequestID = c.GetHeader("X-Request-ID")

		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
	})
}

// ToAppError converts any error to an AppError. Bare errbuilder errors,
// including the ones the scoring packages return, keep their code.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) {
		return wrap(builder)
	}

	switch {
	case errors.Is(err, context.Canceled):
		return NewTimeoutError("Request cancelled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError("Request deadline exceeded", err)
	default:
		return NewInternalError("An unexpected error occurred", err)
	}
}

// LogError logs client mistakes at warn, timeouts at info and everything
// else at error.
func LogError(c *gin.Context, err *AppError) {
	msg := err.ErrBuilder.Msg
	entry := slog.With(
		"error_category", err.Category,
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetHeader("X-Request-ID"),
	)

	var attrs []any
	if fields := err.ErrBuilder.Details.Errors; len(fields) > 0 {
		attrs = append(attrs, "details", fields)
	}
	if cause := err.ErrBuilder.Unwrap(); cause != nil {
		attrs = append(attrs, "cause", cause)
	}

	switch err.Category {
	case CategoryValidation, CategoryRateLimit, CategoryNotFound, CategoryUnauthorized:
		entry.Warn(msg, attrs...)
	case CategoryTimeout:
		entry.Info(msg, attrs...)
	default:
		entry.Error(msg, attrs...)
	}

	if err.StackTrace != "" && gin.Mode() != gin.ReleaseMode {
		entry.Debug("stack_trace", "trace", err.StackTrace)
	}
}

// IsRetryableError reports whether repeating the failed call may succeed.
// Caller mistakes and cancellations are final.
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	switch ToAppError(err).Category {
	case CategoryTimeout, CategoryRateLimit, CategoryInternal:
		return true
	default:
		return false
	}
}

// WrapError prefixes err with a formatted message, keeping it unwrappable
func WrapError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// SafeClose closes a resource and logs a failure instead of returning it
func SafeClose(closer interface{ Close() error }, resourceName string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		slog.Warn("Failed to close resource", "resource", resourceName, "error", err)
	}
}
