package handler

import (
	"net/http"

	"saunakirje/internal/services"
	"saunakirje/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		status, code := statusForError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}
