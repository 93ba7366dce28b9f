package v1

import (
	"log/slog"
	"net/http"

	"institution-site-backend/config"
	"institution-site-backend/internal/delivery/http/middleware"
	"institution-site-backend/internal/delivery/http/response"
	"institution-site-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	ContactUC      domain.ContactUsecase
	ContentUC      domain.ContentUsecase
	MetricsHandler http.Handler // Served on /metrics when set
	Config         *config.Config
	Logger         *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.AllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler(deps.Logger))

	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	// Public routes (no authentication in this service)
	NewContactHandler(v1, deps.ContactUC)
	NewContentHandler(v1, deps.ContentUC)

	return r
}
