package handler

import (
	"net/http"

	"saunakirje/internal/services"
	"saunakirje/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service *services.UploadService
}

func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

func (h *UploadHandler) CreateImageUpload(c *gin.Context) {
	var req httpdto.CreateImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	result, err := h.service.CreateImageUpload(c.Request.Context(), services.ImageUploadInput{
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		status, code := statusForError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.CreateImageUploadResponse{
		UploadURL: result.UploadURL,
		Headers:   result.Headers,
		PublicURL: result.PublicURL,
		ObjectKey: result.ObjectKey,
	}))
}
