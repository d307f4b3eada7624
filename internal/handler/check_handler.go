package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/service"
	"github.com/studyduel/studyduel-backend/pkg/response"
	"github.com/studyduel/studyduel-backend/pkg/validator"
)

// CheckHandler exposes the evaluation surface: per-user checks, the
// event trigger, progress views, and the admin batch endpoints.
type CheckHandler struct {
	checkerService service.CheckerService
	batchService   service.BatchService
}

func NewCheckHandler(checkerService service.CheckerService, batchService service.BatchService) *CheckHandler {
	return &CheckHandler{
		checkerService: checkerService,
		batchService:   batchService,
	}
}

func (h *CheckHandler) GetUserAchievements(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	achievements, err := h.checkerService.GetUserAchievements(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}

func (h *CheckHandler) GetUserProgress(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	progress, err := h.checkerService.GetUserProgress(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *CheckHandler) CheckUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	newlyAwarded, err := h.checkerService.CheckUser(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"new_achievements": newlyAwarded})
}

// TriggerCheck runs a check for the authenticated user after an
// activity event, e.g. a duel finishing on the client.
func (h *CheckHandler) TriggerCheck(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req struct {
		ActionType string `json:"action_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	newlyAwarded, err := h.checkerService.TriggerCheck(c.Request.Context(), userID, req.ActionType)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"new_achievements": newlyAwarded})
}

func (h *CheckHandler) CheckMany(c *gin.Context) {
	var req dto.CheckManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result := h.batchService.CheckMany(c.Request.Context(), req.UserIDs)
	c.JSON(http.StatusOK, result)
}

func (h *CheckHandler) CheckAll(c *gin.Context) {
	// The body is optional; an empty request sweeps with the default limit.
	var req dto.CheckAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
			return
		}
	}

	result, err := h.batchService.CheckAll(c.Request.Context(), req.Limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
