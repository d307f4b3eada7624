package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/service"
	"github.com/studyduel/studyduel-backend/pkg/response"
	"github.com/studyduel/studyduel-backend/pkg/validator"
)

type AchievementHandler struct {
	service service.AchievementService
}

func NewAchievementHandler(service service.AchievementService) *AchievementHandler {
	return &AchievementHandler{service: service}
}

func (h *AchievementHandler) CreateAchievement(c *gin.Context) {
	var req dto.CreateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	achievement, err := h.service.CreateAchievement(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, achievement)
}

func (h *AchievementHandler) GetAchievement(c *gin.Context) {
	id, err := parseAchievementID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid achievement id"})
		return
	}

	achievement, err := h.service.GetAchievement(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, achievement)
}

func (h *AchievementHandler) ListAchievements(c *gin.Context) {
	achievements, err := h.service.ListAchievements(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}

func (h *AchievementHandler) UpdateAchievement(c *gin.Context) {
	id, err := parseAchievementID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid achievement id"})
		return
	}

	var req dto.UpdateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	achievement, err := h.service.UpdateAchievement(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, achievement)
}

func (h *AchievementHandler) DeleteAchievement(c *gin.Context) {
	id, err := parseAchievementID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid achievement id"})
		return
	}

	if err := h.service.DeleteAchievement(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "achievement deleted successfully"})
}

func parseAchievementID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
