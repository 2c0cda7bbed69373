package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ticketrush/ticketrush/pkg/response"
)

const (
	// ContextKeyUserID is the context key for the authenticated user id
	ContextKeyUserID = "user_id"
	// ContextKeyRole is the context key for the authenticated user role
	ContextKeyRole = "role"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the claims this system reads from externally issued tokens
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig holds JWT verification settings
type AuthConfig struct {
	Secret string
	Issuer string
}

// Auth verifies a bearer token issued by the external auth service and puts
// the subject into the request context. Token issuance is not handled here.
func Auth(cfg *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c, cfg)
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextKeyRole)
		if role != "admin" {
			response.Forbidden(c, "admin role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID extracts the authenticated user id from the gin context
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func parseToken(c *gin.Context, cfg *AuthConfig) (*Claims, error) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, ErrMissingToken
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
