package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oyado/faqbot/internal/domain/auth"
	"github.com/oyado/faqbot/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(
	cfg *config.Config,
	chatHandler *ChatHandler,
	authHandler *AuthHandler,
	adminHandler *AdminHandler,
	tenantHandler *TenantHandler,
	authSvc auth.Service,
	logger *slog.Logger,
) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/chat/:companyID", chatHandler.Ask)
		api.POST("/companies", tenantHandler.CreateCompany)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		admin := api.Group("/admin/:companyID", authMiddleware(authSvc), companyScopeMiddleware())
		{
			admin.GET("/faqs", adminHandler.ListFAQs)
			admin.POST("/faqs", adminHandler.CreateFAQ)
			admin.GET("/faqs/:entryID", adminHandler.GetFAQ)
			admin.PUT("/faqs/:entryID", adminHandler.UpdateFAQ)
			admin.DELETE("/faqs/:entryID", adminHandler.DeleteFAQ)
			admin.POST("/faqs/import", adminHandler.ImportFAQs)
			admin.GET("/faqs/export", adminHandler.ExportFAQs)
			admin.POST("/faqs/reembed", adminHandler.Reembed)

			admin.GET("/history", adminHandler.History)
			admin.GET("/trending", adminHandler.Trending)

			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)
			admin.DELETE("/settings", tenantHandler.DeleteCompany)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"request_id", c.GetString(requestIDKey))
	}
}
