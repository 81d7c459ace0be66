package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"eduplatform/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err  error
		want int
	}{
		{services.ErrValidation, http.StatusBadRequest},
		{services.ErrInsufficientBalance, http.StatusBadRequest},
		{services.ErrCooldown, http.StatusBadRequest},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrThrottled, http.StatusTooManyRequests},
		{services.ErrCollaborator, http.StatusBadGateway},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("wrapped errors unwrap", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, fmt.Errorf("lesson costs 10 tokens: %w", services.ErrInsufficientBalance))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
