package handler

import (
	"net/http"

	"saunakirje/internal/mailer"
	"saunakirje/internal/services"
	"saunakirje/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type SubscriberHandler struct {
	service *services.SubscriberService
}

func NewSubscriberHandler(service *services.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{service: service}
}

func (h *SubscriberHandler) Subscribe(c *gin.Context) {
	var req httpdto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.service.Subscribe(c.Request.Context(), req.Email); err != nil {
		status, code := statusForError(err)
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"subscribed": true}))
}

// Unsubscribe is the click-through target embedded in every newsletter
// footer, so it answers with a small HTML page rather than JSON.
func (h *SubscriberHandler) Unsubscribe(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.String(http.StatusBadRequest, "missing email")
		return
	}

	if err := h.service.Unsubscribe(c.Request.Context(), email); err != nil {
		status, _ := statusForError(err)
		c.String(status, "unable to unsubscribe")
		return
	}

	var message string
	switch mailer.UnsubscribeLabel(c.Query("lang")) {
	case "Peruuta tilaus":
		message = "Tilauksesi on peruutettu."
	case "Avsluta prenumerationen":
		message = "Din prenumeration har avslutats."
	default:
		message = "You have been unsubscribed."
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8",
		[]byte("<html><body><p>"+message+"</p></body></html>"))
}
