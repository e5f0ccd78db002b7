package delivery

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"furnistore/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"wrapped invalid input", fmt.Errorf("%w: cart cannot be empty", domain.ErrInvalidInput), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("order with id 7: %w", domain.ErrNotFound), http.StatusNotFound},
		{"not found text", errors.New("product with ID 3 not found"), http.StatusNotFound},
		{"already exists", errors.New("user with email a@b.com already exists"), http.StatusConflict},
		{"duplicate key", errors.New("pq: duplicate key value violates unique constraint"), http.StatusConflict},
		{"invalid text", errors.New("invalid order status provided: archived"), http.StatusBadRequest},
		{"empty field", errors.New("product name cannot be empty"), http.StatusBadRequest},
		{"positive constraint", errors.New("product price must be positive"), http.StatusBadRequest},
		{"missing reference", errors.New("category with id 9 does not exist"), http.StatusBadRequest},
		{"unclassified", errors.New("connection reset by peer"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToStatus(tt.err))
		})
	}
}
