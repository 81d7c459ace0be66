package handlers

import (
	"net/http"
	"strconv"

	"eduplatform/models"
	"eduplatform/services"

	"github.com/gin-gonic/gin"
)

// FamilyHandler covers the parent and teacher views of linked student
// accounts.
type FamilyHandler struct {
	userService *services.UserService
}

func NewFamilyHandler(userService *services.UserService) *FamilyHandler {
	return &FamilyHandler{userService: userService}
}

func currentRole(c *gin.Context) models.Role {
	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	return models.Role(roleStr)
}

func (h *FamilyHandler) Children(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	role := currentRole(c)
	if !models.Can(role, models.ActionViewChildren) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied"})
		return
	}

	children, err := h.userService.Children(userID, role == models.RoleTeacher)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "children": children})
}

func (h *FamilyHandler) ChildProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	role := currentRole(c)
	if !models.Can(role, models.ActionViewChildren) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied"})
		return
	}

	childID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	progress, err := h.userService.Progress(userID, uint(childID), role == models.RoleTeacher)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"child":    progress.Child,
		"attempts": progress.Attempts,
	})
}

func (h *FamilyHandler) LinkChild(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	role := currentRole(c)
	if !models.Can(role, models.ActionViewChildren) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied"})
		return
	}

	childID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	if err := h.userService.LinkChild(userID, uint(childID), role == models.RoleTeacher); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Student linked"})
}
