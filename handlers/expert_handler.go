package handlers

import (
	"net/http"
	"strconv"

	"eduplatform/services"

	"github.com/gin-gonic/gin"
)

type ExpertHandler struct {
	expertService *services.ExpertService
}

func NewExpertHandler(expertService *services.ExpertService) *ExpertHandler {
	return &ExpertHandler{expertService: expertService}
}

func (h *ExpertHandler) List(c *gin.Context) {
	experts, err := h.expertService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "experts": experts})
}

func (h *ExpertHandler) Select(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	expertID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid expert ID"})
		return
	}

	if err := h.expertService.Select(userID, uint(expertID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Expert selected"})
}

func (h *ExpertHandler) Chat(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result, err := h.expertService.Chat(c.Request.Context(), userID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chat": result})
}

func (h *ExpertHandler) Create(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.ExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	expert, err := h.expertService.Create(adminID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "expert": expert})
}

func (h *ExpertHandler) Delete(c *gin.Context) {
	expertID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid expert ID"})
		return
	}

	if err := h.expertService.Delete(uint(expertID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Expert removed"})
}
