package handlers

import (
	"net/http"
	"strconv"

	"eduplatform/services"

	"github.com/gin-gonic/gin"
)

type LessonHandler struct {
	lessonService  *services.LessonService
	catalogService *services.CatalogService
}

func NewLessonHandler(lessonService *services.LessonService, catalogService *services.CatalogService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService, catalogService: catalogService}
}

func (h *LessonHandler) CreateLesson(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result, err := h.lessonService.CreateLesson(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "Lesson created",
		"lesson_id":    result.LessonID,
		"quiz_id":      result.QuizID,
		"explanation":  result.Explanation,
		"tokens_spent": result.TokensSpent,
		"new_balance":  result.NewBalance,
	})
}

func (h *LessonHandler) GetLesson(c *gin.Context) {
	lessonID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid lesson ID"})
		return
	}

	lesson, err := h.lessonService.GetLesson(uint(lessonID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "lesson": lesson})
}

func (h *LessonHandler) ListBySubject(c *gin.Context) {
	subjectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid subject ID"})
		return
	}

	lessons, err := h.lessonService.ListBySubject(uint(subjectID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "lessons": lessons})
}

func (h *LessonHandler) Subjects(c *gin.Context) {
	subjects, err := h.catalogService.Subjects()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "subjects": subjects})
}
