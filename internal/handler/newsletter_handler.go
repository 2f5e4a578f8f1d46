package handler

import (
	"fmt"
	"net/http"
	"time"

	"saunakirje/internal/domain/newsletter"
	"saunakirje/internal/services"
	"saunakirje/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NewsletterHandler struct {
	service *services.NewsletterService
}

func NewNewsletterHandler(service *services.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{service: service}
}

func (h *NewsletterHandler) Send(c *gin.Context) {
	var req httpdto.SendNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	p, ok := services.ProfileFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	result, err := h.service.Send(c.Request.Context(), services.SendInput{
		Audience:   newsletter.Audience(req.Audience),
		TestEmail:  req.TestEmail,
		TemplateID: req.TemplateID,
		Subject:    req.Subject,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		Lang:       req.Lang,
		SenderID:   p.ID,
	})
	if err != nil {
		status, code := statusForError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}

	resp := httpdto.SendNewsletterResponse{
		Count:        result.Count,
		SuccessCount: result.SuccessCount,
		FailureCount: result.FailureCount,
		Errors:       make([]httpdto.SendErrorDTO, 0, len(result.Errors)),
	}
	if result.NewsletterID != uuid.Nil {
		resp.NewsletterID = result.NewsletterID.String()
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, httpdto.SendErrorDTO{Email: e.Email, Error: e.Error})
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}

func (h *NewsletterHandler) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 20)

	items, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		status, code := statusForError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}

	resp := httpdto.NewsletterListResponse{
		Newsletters: make([]httpdto.NewsletterDTO, 0, len(items)),
		Total:       total,
	}
	for _, n := range items {
		resp.Newsletters = append(resp.Newsletters, toNewsletterDTO(n))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(resp))
}

func (h *NewsletterHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid newsletter id", "INVALID_REQUEST"))
		return
	}

	n, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		status, code := statusForError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toNewsletterDTO(n)))
}

// ExportRecipients streams the delivery log of one broadcast as CSV.
func (h *NewsletterHandler) ExportRecipients(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid newsletter id", "INVALID_REQUEST"))
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=newsletter-%s-recipients.csv", id))

	if err := h.service.ExportRecipientsCSV(c.Request.Context(), id, c.Writer); err != nil {
		status, code := statusForError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
}

func toNewsletterDTO(n newsletter.Newsletter) httpdto.NewsletterDTO {
	dto := httpdto.NewsletterDTO{
		ID:              n.ID.String(),
		Subject:         n.Subject,
		Audience:        string(n.Audience),
		TemplateID:      n.TemplateID,
		ImageURL:        n.ImageURL.String,
		Status:          n.Status,
		TotalRecipients: n.TotalRecipients,
		SuccessCount:    n.SuccessCount,
		FailureCount:    n.FailureCount,
		CreatedAt:       n.CreatedAt.Format(time.RFC3339),
	}
	if n.CompletedAt.Valid {
		dto.CompletedAt = n.CompletedAt.Time.Format(time.RFC3339)
	}
	return dto
}

func intQuery(c *gin.Context, key string, fallback int) int {
	value := fallback
	if _, err := fmt.Sscanf(c.Query(key), "%d", &value); err != nil {
		return fallback
	}
	return value
}
