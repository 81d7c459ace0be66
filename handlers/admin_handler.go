package handlers

import (
	"net/http"
	"strconv"

	"eduplatform/models"
	"eduplatform/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userService    *services.UserService
	catalogService *services.CatalogService
}

func NewAdminHandler(userService *services.UserService, catalogService *services.CatalogService) *AdminHandler {
	return &AdminHandler{userService: userService, catalogService: catalogService}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func (h *AdminHandler) SetBalance(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var req struct {
		Tokens int `json:"tokens"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	balance, err := h.userService.SetBalance(uint(userID), req.Tokens)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Balance updated", "tokens": balance})
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var req struct {
		Role models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.userService.SetRole(adminID, uint(userID), req.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Role updated"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	if err := h.userService.DeleteUser(adminID, uint(userID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
}

func (h *AdminHandler) CreateSubject(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	subject, err := h.catalogService.CreateSubject(adminID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "subject": subject})
}

func (h *AdminHandler) UpdateSubject(c *gin.Context) {
	subjectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid subject ID"})
		return
	}

	var req services.SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.catalogService.UpdateSubject(uint(subjectID), &req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Subject updated"})
}

func (h *AdminHandler) DeleteSubject(c *gin.Context) {
	subjectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid subject ID"})
		return
	}

	if err := h.catalogService.DeleteSubject(uint(subjectID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Subject deleted"})
}

func (h *AdminHandler) CreateAchievement(c *gin.Context) {
	var req services.AchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	achievement, err := h.catalogService.CreateAchievement(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "achievement": achievement})
}

func (h *AdminHandler) DeleteAchievement(c *gin.Context) {
	achievementID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid achievement ID"})
		return
	}

	if err := h.catalogService.DeleteAchievement(uint(achievementID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Achievement deleted"})
}
