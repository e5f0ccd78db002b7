package delivery

import (
	"errors"
	"net/http"
	"strings"

	"furnistore/internal/domain"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Error: message})
}

func mapErrorToStatus(err error) int {
	if errors.Is(err, domain.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, domain.ErrNotFound) {
		return http.StatusNotFound
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "not found") {
		return http.StatusNotFound
	}
	if strings.Contains(errMsg, "already exists") || strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint") {
		return http.StatusConflict
	}
	if strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "cannot be empty") ||
		strings.Contains(errMsg, "must be positive") || strings.Contains(errMsg, "cannot be negative") ||
		strings.Contains(errMsg, "constraint violation") || strings.Contains(errMsg, "is required") {
		return http.StatusBadRequest
	}
	if strings.Contains(errMsg, "does not exist") {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
