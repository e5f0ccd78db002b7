package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"furnistore/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func signTestToken(t *testing.T, secret string, userID int, role string, expiry time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"exp":    time.Now().Add(expiry).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func identityEcho(c *gin.Context) {
	userID, _ := c.Get(ContextUserIDKey)
	role, _ := c.Get(ContextRoleKey)
	c.JSON(http.StatusOK, gin.H{"userId": userID, "role": role})
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/protected", AuthMiddleware(testSecret, testLogger()), identityEcho)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signTestToken(t, "other-secret", 1, domain.RoleCustomer, time.Hour), http.StatusUnauthorized},
		{"expired token", "Bearer " + signTestToken(t, testSecret, 1, domain.RoleCustomer, -time.Hour), http.StatusUnauthorized},
		{"valid token", "Bearer " + signTestToken(t, testSecret, 1, domain.RoleCustomer, time.Hour), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/open", OptionalAuthMiddleware(testSecret, testLogger()), func(c *gin.Context) {
		_, authenticated := c.Get(ContextUserIDKey)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})

	t.Run("anonymous passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"authenticated":false`)
	})

	t.Run("invalid token still passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer junk")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"authenticated":false`)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, 5, domain.RoleCustomer, time.Hour))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), `"authenticated":true`)
	})
}

func TestAdminMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	admin := router.Group("/admin", AuthMiddleware(testSecret, testLogger()), AdminMiddleware(testLogger()))
	admin.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("customer rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, 1, domain.RoleCustomer, time.Hour))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("admin allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer "+signTestToken(t, testSecret, 1, domain.RoleAdmin, time.Hour))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}
