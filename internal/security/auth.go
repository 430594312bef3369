package security

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
)

const (
	adminSubject = "admin"
	tokenIssuer  = "teamconstructor"
	claimsKey    = "admin_claims"
)

// AdminClaims is what a verified admin token carries
type AdminClaims struct {
	Subject   string
	TokenID   string
	ExpiresAt time.Time
}

// AdminAuth issues and verifies the HS256 tokens guarding /admin routes
type AdminAuth struct {
	secret   []byte
	password string
	ttl      time.Duration
}

// NewAdminAuth creates the admin authenticator. An empty password disables login.
func NewAdminAuth(secret, password string, ttl time.Duration) *AdminAuth {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AdminAuth{secret: []byte(secret), password: password, ttl: ttl}
}

// Enabled reports whether an admin password is configured
func (a *AdminAuth) Enabled() bool {
	return a.password != ""
}

// CheckPassword compares in constant time
func (a *AdminAuth) CheckPassword(candidate string) bool {
	if !a.Enabled() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.password)) == 1
}

// IssueToken signs a new admin token
func (a *AdminAuth) IssueToken() (string, time.Time, error) {
	if len(a.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("jwt secret not configured")
	}

	now := time.Now()
	expiresAt := now.Add(a.ttl)
	claims := jwt.MapClaims{
		"sub": adminSubject,
		"jti": uuid.NewString(),
		"iss": tokenIssuer,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies signature, expiry, issuer and subject
func (a *AdminAuth) ParseToken(tokenString string) (*AdminClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	if sub != adminSubject {
		return nil, fmt.Errorf("token subject %q is not an admin", sub)
	}
	jti, _ := claims["jti"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("token has no expiry")
	}

	return &AdminClaims{Subject: sub, TokenID: jti, ExpiresAt: exp.Time}, nil
}

// RequireAdmin rejects requests without a valid Bearer token
func (a *AdminAuth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(tokenString) == "" {
			abortUnauthorized(c, "missing bearer token", nil)
			return
		}

		claims, err := a.ParseToken(strings.TrimSpace(tokenString))
		if err != nil {
			abortUnauthorized(c, "invalid admin token", err)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the admin claims stored by RequireAdmin
func ClaimsFromContext(c *gin.Context) (*AdminClaims, bool) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*AdminClaims)
	return claims, ok
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleLogin exchanges the admin password for a token
//
//	@Summary	Admin login
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		body	body		loginRequest	true	"Admin password"
//	@Success	200		{object}	loginResponse
//	@Failure	400		{object}	map[string]interface{}
//	@Failure	401		{object}	map[string]interface{}
//	@Router		/admin/login [post]
func (a *AdminAuth) HandleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(apperrors.NewValidationError("password is required", err.Error()))
			return
		}

		if !a.CheckPassword(req.Password) {
			_ = c.Error(apperrors.NewUnauthorizedError("invalid credentials", nil))
			return
		}

		token, expiresAt, err := a.IssueToken()
		if err != nil {
			_ = c.Error(apperrors.NewInternalError("failed to issue token", err))
			return
		}

		c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
	}
}

func abortUnauthorized(c *gin.Context, msg string, cause error) {
	appErr := apperrors.NewUnauthorizedError(msg, cause)
	apperrors.LogError(c, appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
}
