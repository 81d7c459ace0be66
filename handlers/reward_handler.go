package handlers

import (
	"net/http"
	"strconv"

	"eduplatform/services"

	"github.com/gin-gonic/gin"
)

type RewardHandler struct {
	rewardService *services.RewardService
	ledgerService *services.LedgerService
	userService   *services.UserService
}

func NewRewardHandler(rewardService *services.RewardService, ledgerService *services.LedgerService, userService *services.UserService) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
		ledgerService: ledgerService,
		userService:   userService,
	}
}

func (h *RewardHandler) ClaimDaily(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.rewardService.ClaimDaily(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Daily reward claimed", "reward": result})
}

func (h *RewardHandler) DailyStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	status, err := h.rewardService.Status(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": status})
}

func (h *RewardHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, err := h.userService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": entries})
}

func (h *RewardHandler) Achievements(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	catalog, earned, err := h.userService.Achievements(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "achievements": catalog, "earned": earned})
}

func (h *RewardHandler) Transactions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	history, err := h.ledgerService.History(userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": history})
}
