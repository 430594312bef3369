package security

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
)

func TestSecurityConfig(t *testing.T) {
	config := DefaultSecurityConfig()

	assert.Equal(t, 200, config.MaxInputLength)
	assert.Equal(t, int64(64<<10), config.MaxBodyBytes)
	assert.Contains(t, config.AllowedOrigins, "http://localhost:3000")
	assert.Contains(t, config.AllowedOrigins, "http://localhost:5173")
	assert.Equal(t, 30*time.Second, config.RequestTimeout)

	assert.Equal(t, DefaultSecurityConfig(), NewSecurityMiddleware(nil).Config())
}

func TestSanitizeInput(t *testing.T) {
	sm := NewSecurityMiddleware(&SecurityConfig{MaxInputLength: 10})

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "Ivan", expected: "Ivan"},
		{name: "trim and collapse", input: "  Anna \t Li  ", expected: "Anna Li"},
		{name: "script removed", input: "<script>alert(1)</script>Bob", expected: "Bob"},
		{name: "tags removed", input: "<b>Eve</b>", expected: "Eve"},
		{name: "commas removed", input: "Kim, QA", expected: "Kim QA"},
		{name: "truncated", input: "Александр Сергеевич", expected: "Александр"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sm.SanitizeInput(tt.input))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(DefaultSecurityConfig())
	router := gin.New()
	router.Use(sm.SecurityHeadersMiddleware())
	router.GET("/v1/decode", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/swagger/*any", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/decode", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, apiCSP, w.Header().Get("Content-Security-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, swaggerCSP, w.Header().Get("Content-Security-Policy"))

	hsts := NewSecurityMiddleware(&SecurityConfig{EnableHSTS: true})
	router = gin.New()
	router.Use(hsts.SecurityHeadersMiddleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestValidateContentType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(DefaultSecurityConfig())
	router := gin.New()
	router.Use(sm.ValidateContentType)
	router.POST("/v1/pair", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name        string
		contentType string
		body        string
		expected    int
	}{
		{name: "json", contentType: "application/json", body: "{}", expected: http.StatusOK},
		{name: "json with charset", contentType: "application/json; charset=utf-8", body: "{}", expected: http.StatusOK},
		{name: "no body", contentType: "", body: "", expected: http.StatusOK},
		{name: "text", contentType: "text/plain", body: "hi", expected: http.StatusUnsupportedMediaType},
		{name: "form", contentType: "application/x-www-form-urlencoded", body: "a=b", expected: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/pair", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(&SecurityConfig{MaxBodyBytes: 8})
	router := gin.New()
	router.Use(sm.LimitBody)
	router.POST("/v1/encode", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/encode", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/encode", strings.NewReader(`{"a":"0123456789"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCORSConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(DefaultSecurityConfig())
	router := gin.New()
	router.Use(sm.CORSConfig())
	router.POST("/v1/team", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/team", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/team", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/team", nil)
		req.Header.Set("Origin", "http://evil.example")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sm := NewSecurityMiddleware(&SecurityConfig{RequestTimeout: 2 * time.Second})
	router := gin.New()
	router.Use(sm.RequestTimeout)

	var deadline time.Time
	var hasDeadline bool
	router.GET("/v1/decode", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/decode", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Timeout"))
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
}

func TestAdminAuth_Tokens(t *testing.T) {
	auth := NewAdminAuth("0123456789abcdef0123", "s3cret", time.Hour)

	token, expiresAt, err := auth.IssueToken()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, adminSubject, claims.Subject)
	assert.NotEmpty(t, claims.TokenID)

	other := NewAdminAuth("another-secret-of-20c", "s3cret", time.Hour)
	_, err = other.ParseToken(token)
	assert.Error(t, err, "signature from another secret must fail")

	expired := NewAdminAuth("0123456789abcdef0123", "s3cret", time.Hour)
	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": adminSubject,
		"iss": tokenIssuer,
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString(expired.secret)
	require.NoError(t, err)
	_, err = expired.ParseToken(stale)
	assert.Error(t, err)

	notAdmin, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user",
		"iss": tokenIssuer,
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString(auth.secret)
	require.NoError(t, err)
	_, err = auth.ParseToken(notAdmin)
	assert.Error(t, err)
}

func TestAdminAuth_Password(t *testing.T) {
	assert.True(t, NewAdminAuth("secret", "pw", 0).CheckPassword("pw"))
	assert.False(t, NewAdminAuth("secret", "pw", 0).CheckPassword("PW"))
	assert.False(t, NewAdminAuth("secret", "", 0).CheckPassword(""), "empty password disables login")
}

func TestAdminAuth_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	auth := NewAdminAuth("0123456789abcdef0123", "s3cret", time.Hour)
	router := gin.New()
	router.Use(apperrors.ErrorHandler())
	router.POST("/admin/login", auth.HandleLogin())
	router.GET("/admin/results", auth.RequireAdmin(), func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject})
	})

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusBadRequest, login(`{}`).Code)
	assert.Equal(t, http.StatusUnauthorized, login(`{"password":"wrong"}`).Code)

	w := login(`{"password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	tests := []struct {
		name     string
		header   string
		expected int
	}{
		{name: "no header", header: "", expected: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + resp.Token, expected: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer abc.def.ghi", expected: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer " + resp.Token, expected: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/results", nil).WithContext(context.Background())
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}
