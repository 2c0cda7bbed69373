package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(&AuthConfig{Secret: testSecret, Issuer: "auth-service"})}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsValidToken(t *testing.T) {
	token := signToken(t, &Claims{
		UserID: "u1",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "auth-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	w := doRequest(authRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u1")
}

func TestAuthFallsBackToSubject(t *testing.T) {
	token := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u2",
			Issuer:    "auth-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	w := doRequest(authRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u2")
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	w := doRequest(authRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	token := signToken(t, &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "auth-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, "other-secret")

	w := doRequest(authRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := signToken(t, &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "auth-service",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)

	w := doRequest(authRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsWrongIssuer(t *testing.T) {
	token := signToken(t, &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	w := doRequest(authRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	makeToken := func(role string) string {
		return signToken(t, &Claims{
			UserID: "u1",
			Role:   role,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "auth-service",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}, testSecret)
	}

	router := authRouter(RequireAdmin())

	w := doRequest(router, "Bearer "+makeToken("admin"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "Bearer "+makeToken("user"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
