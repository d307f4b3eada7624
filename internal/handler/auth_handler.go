package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studyduel/studyduel-backend/internal/dto"
	"github.com/studyduel/studyduel-backend/internal/service"
	"github.com/studyduel/studyduel-backend/pkg/response"
	"github.com/studyduel/studyduel-backend/pkg/validator"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
