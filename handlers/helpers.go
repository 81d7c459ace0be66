package handlers

import (
	"errors"
	"net/http"

	"eduplatform/services"

	"github.com/gin-gonic/gin"
)

// currentUserID reads the id set by the auth middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return 0, false
	}
	return v.(uint), true
}

// respondError maps workflow errors onto HTTP statuses with the standard
// success/message payload.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInsufficientBalance):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrCooldown):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrThrottled):
		status = http.StatusTooManyRequests
	case errors.Is(err, services.ErrCollaborator):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}
