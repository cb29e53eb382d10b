package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/handlers"
	"github.com/huangang/folio/backend/internal/middleware"
	"github.com/huangang/folio/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	cfg := svc.cfg

	// Middleware
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.Metrics(), middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	healthHandler := handlers.NewHealthHandler(svc.db, svc.taskQueue, svc.cache)
	r.GET("/health", healthHandler.CheckHealth)
	r.GET("/metrics", handlers.Metrics(svc.db))

	authHandler := handlers.NewAuthHandler(svc.db, cfg, svc.taskQueue)
	portfolioHandler := handlers.NewPortfolioHandler(svc.db, svc.cache)
	projectHandler := handlers.NewProjectHandler(svc.db, svc.cache)
	tagHandler := handlers.NewTagHandler(svc.db)
	slideTagHandler := handlers.NewSlideTagHandler(svc.db)
	blockHandler := handlers.NewContentBlockHandler(svc.db)
	themeHandler := handlers.NewThemeSettingsHandler(svc.db, svc.cache)
	activityHandler := handlers.NewActivityHandler(svc.logs)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited per IP)
		auth := api.Group("/auth", svc.limiter.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public portfolio view
		api.GET("/portfolios/:slug", portfolioHandler.GetPublic)

		// Protected routes
		protected := api.Group("")
		// ErrorHandler runs again inside AuditLog so the audited status is the final one
		protected.Use(middleware.AuthRequired(cfg.JWT.CookieName), middleware.AuditLog(svc.logs), middleware.ErrorHandler())
		{
			protected.GET("/auth/me", authHandler.GetCurrentUser)
			protected.POST("/auth/logout", authHandler.Logout)
			protected.POST("/auth/change-password", authHandler.ChangePassword)

			// Portfolios
			protected.GET("/portfolios", portfolioHandler.List)
			protected.POST("/portfolios", portfolioHandler.Create)
			protected.PUT("/portfolios/:slug", portfolioHandler.Update)
			protected.DELETE("/portfolios/:slug", portfolioHandler.Delete)
			protected.POST("/portfolios/:slug/project", portfolioHandler.AddProject)
			protected.DELETE("/portfolios/:slug/project", portfolioHandler.RemoveProject)
			protected.GET("/portfolios/:slug/projects", portfolioHandler.ListProjects)

			// Projects
			protected.GET("/projects", projectHandler.List)
			protected.POST("/projects", projectHandler.Create)
			protected.PUT("/projects/reorder", projectHandler.Reorder)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.PUT("/projects/:id", projectHandler.Update)
			protected.DELETE("/projects/:id", projectHandler.Delete)
			protected.POST("/projects/:id/contents", projectHandler.CreateContent)
			protected.DELETE("/projects/:id/contents/:contentId", projectHandler.DeleteContent)

			// Tags
			protected.GET("/tags", tagHandler.List)
			protected.POST("/tags", tagHandler.Create)
			protected.PUT("/tags/:id", tagHandler.Update)
			protected.DELETE("/tags/:id", tagHandler.Delete)
			protected.GET("/projects/:id/tags", tagHandler.ListForProject)
			protected.POST("/projects/:id/tags", tagHandler.AddToProject)
			protected.DELETE("/projects/:id/tags", tagHandler.RemoveFromProject)

			// Slide tags
			protected.GET("/slide-tags", slideTagHandler.List)
			protected.POST("/slide-tags", slideTagHandler.Create)
			protected.PUT("/slide-tags/:id", slideTagHandler.Update)
			protected.DELETE("/slide-tags/:id", slideTagHandler.Delete)

			// Content blocks
			protected.POST("/project/:id/block", blockHandler.Create)
			protected.PUT("/project/:id/block", blockHandler.Update)
			protected.DELETE("/project/:id/block/:blockId", blockHandler.Delete)
			protected.PUT("/project/:id/block/:blockId/tag", blockHandler.SetSlideTag)

			// Theme settings and languages
			protected.GET("/theme-settings", themeHandler.Get)
			protected.POST("/theme-settings", themeHandler.Create)
			protected.PUT("/theme-settings", themeHandler.Update)
			protected.GET("/languages", themeHandler.Languages)

			protected.GET("/activity", activityHandler.List)
		}
	}
}
