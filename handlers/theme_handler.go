package handlers

import (
	"net/http"
	"strconv"

	"eduplatform/services"

	"github.com/gin-gonic/gin"
)

type ThemeHandler struct {
	themeService *services.ThemeService
}

func NewThemeHandler(themeService *services.ThemeService) *ThemeHandler {
	return &ThemeHandler{themeService: themeService}
}

func (h *ThemeHandler) CreateTheme(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	theme, err := h.themeService.CreateTheme(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Theme submitted for review", "theme": theme})
}

func (h *ThemeHandler) Market(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entries, err := h.themeService.Market(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "themes": entries})
}

func (h *ThemeHandler) Purchase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	themeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid theme ID"})
		return
	}

	result, err := h.themeService.Purchase(userID, uint(themeID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Theme applied", "purchase": result})
}

func (h *ThemeHandler) ApplyBuiltin(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.themeService.ApplyBuiltin(userID, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Theme applied"})
}

func (h *ThemeHandler) Pending(c *gin.Context) {
	themes, err := h.themeService.Pending()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "themes": themes})
}

func (h *ThemeHandler) Approve(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	themeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid theme ID"})
		return
	}

	if err := h.themeService.Approve(adminID, uint(themeID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Theme approved"})
}

func (h *ThemeHandler) Reject(c *gin.Context) {
	themeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid theme ID"})
		return
	}

	if err := h.themeService.Reject(uint(themeID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Theme rejected"})
}
