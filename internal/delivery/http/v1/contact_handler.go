package v1

import (
	"net/http"

	"institution-site-backend/internal/delivery/http/response"
	"institution-site-backend/internal/domain"
	"institution-site-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

var malformedBodyMessages = map[domain.Locale]string{
	domain.LocaleFR: "Requête invalide.",
	domain.LocaleEN: "Invalid request body.",
}

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// NewContactHandler registers the contact routes (public, no auth required)
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	public.POST("/contact", handler.SubmitContact)
}

// SubmitContact runs the contact pipeline and answers with its outcome.
// A silently dropped submission is indistinguishable from a delivered one.
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		locale := resolveLocale(c, "")
		c.Error(apperror.New(http.StatusBadRequest, malformedBodyMessages[locale], err))
		return
	}
	req.Locale = resolveLocale(c, req.Locale)

	outcome := h.contactUC.Submit(c.Request.Context(), &req)
	response.Outcome(c, outcomeStatus(outcome.State), outcome)
}

func outcomeStatus(state domain.SubmissionState) int {
	switch state {
	case domain.StateDelivered, domain.StateSilentlyDropped:
		return http.StatusOK
	case domain.StateInvalid:
		return http.StatusUnprocessableEntity
	case domain.StateTooFast:
		return http.StatusTooManyRequests
	case domain.StateConfigMissing, domain.StateDeliveryFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
