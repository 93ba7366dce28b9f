package v1

import (
	"errors"
	"net/http"
	"strconv"

	"institution-site-backend/internal/delivery/http/response"
	"institution-site-backend/internal/domain"
	"institution-site-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentUC domain.ContentUsecase
}

// NewContentHandler registers the read-only content routes
func NewContentHandler(public *gin.RouterGroup, contentUC domain.ContentUsecase) {
	handler := &ContentHandler{
		contentUC: contentUC,
	}

	content := public.Group("/content")
	content.GET("/settings", handler.GetSiteSettings)
	content.GET("/news", handler.ListNews)
	content.GET("/pages/:slug", handler.GetPage)
}

// GetSiteSettings always answers 200, with static settings if the repository is down
func (h *ContentHandler) GetSiteSettings(c *gin.Context) {
	locale := resolveLocale(c, "")
	settings := h.contentUC.GetSiteSettings(c.Request.Context(), locale)
	response.Success(c, http.StatusOK, "OK", settings)
}

// ListNews always answers 200, with an empty list if the repository is down
func (h *ContentHandler) ListNews(c *gin.Context) {
	locale := resolveLocale(c, "")
	limit, _ := strconv.Atoi(c.Query("limit"))
	news := h.contentUC.ListNews(c.Request.Context(), locale, limit)
	response.Success(c, http.StatusOK, "OK", news)
}

func (h *ContentHandler) GetPage(c *gin.Context) {
	locale := resolveLocale(c, "")
	page, err := h.contentUC.GetPage(c.Request.Context(), locale, c.Param("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			c.Error(apperror.NotFound("Page not found"))
			return
		}
		c.Error(apperror.BadGateway("Content temporarily unavailable", err))
		return
	}
	response.Success(c, http.StatusOK, "OK", page)
}
