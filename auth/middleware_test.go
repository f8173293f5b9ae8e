package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"collaborative-whiteboard/internal/config"
	"collaborative-whiteboard/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return signed
}

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	config.AppConfig.JWTSecret = testSecret

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/whoami", AuthMiddleWare(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":   c.GetString("participant_id"),
			"name": c.GetString("participant_name"),
		})
	})
	return router
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	router := setupAuthRouter(t)

	token := signToken(t, jwt.MapClaims{
		"participant_id":   "p-1",
		"participant_name": "ada",
		"exp":              time.Now().Add(time.Hour).Unix(),
	})

	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "p-1")
	assert.Contains(t, w.Body.String(), "ada")
}

func TestAuthMiddlewareTokenQueryFallback(t *testing.T) {
	router := setupAuthRouter(t)

	token := signToken(t, jwt.MapClaims{
		"participant_id": "p-2",
		"exp":            time.Now().Add(time.Hour).Unix(),
	})

	req, _ := http.NewRequest(http.MethodGet, "/whoami?token="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "p-2")
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	router := setupAuthRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	router := setupAuthRouter(t)

	token := signToken(t, jwt.MapClaims{
		"participant_id": "p-1",
		"exp":            time.Now().Add(-time.Hour).Unix(),
	})

	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	router := setupAuthRouter(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"participant_id": "p-1",
	})
	signed, err := token.SignedString([]byte("other-secret"))
	assert.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMissingParticipantClaim(t *testing.T) {
	router := setupAuthRouter(t)

	token := signToken(t, jwt.MapClaims{
		"sub": "someone",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
