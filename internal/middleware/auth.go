package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"furnistore/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
)

const (
	ContextUserIDKey = "userId"
	ContextRoleKey   = "role"
)

func AuthMiddleware(jwtSecret string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := parseBearerToken(c, jwtSecret)
		if err != nil {
			log.Warnf("Middleware: Authentication failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the user identity when a valid token is
// present and lets the request through anonymously otherwise. Guest
// checkout and public order lookups run under it.
func OptionalAuthMiddleware(jwtSecret string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		userID, role, err := parseBearerToken(c, jwtSecret)
		if err != nil {
			log.Debugf("Middleware: Ignoring invalid token on optional-auth route: %v", err)
			c.Next()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRoleKey, role)
		c.Next()
	}
}

func AdminMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRoleKey)
		if !exists || role != domain.RoleAdmin {
			log.Warnf("Middleware: Access denied for role %v on %s", role, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: admin only"})
			return
		}
		c.Next()
	}
}

func parseBearerToken(c *gin.Context, jwtSecret string) (int, string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return 0, "", fmt.Errorf("authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return 0, "", fmt.Errorf("invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fmt.Errorf("invalid token claims")
	}

	userIDFloat, ok := claims["userId"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("token missing user identity")
	}
	role, _ := claims["role"].(string)

	return int(userIDFloat), role, nil
}

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		entry := logger.WithFields(logrus.Fields{
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		} else if statusCode >= http.StatusInternalServerError {
			entry.Error("Request completed with server error")
		} else if statusCode >= http.StatusBadRequest {
			entry.Warn("Request completed with client error")
		} else {
			entry.Info("Request completed")
		}
	}
}
