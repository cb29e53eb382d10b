package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/internal/middleware"
	"github.com/huangang/folio/backend/internal/services"
	"github.com/huangang/folio/backend/pkg/response"
	"gorm.io/gorm"
)

type ThemeSettingsHandler struct {
	themeService    *services.ThemeSettingsService
	languageService *services.LanguageService
}

func NewThemeSettingsHandler(db *gorm.DB, cache services.PortfolioCache) *ThemeSettingsHandler {
	return &ThemeSettingsHandler{
		themeService:    services.NewThemeSettingsService(db, cache),
		languageService: services.NewLanguageService(db),
	}
}

// Get returns the caller's theme settings, null when none exist
// GET /api/theme-settings
func (h *ThemeSettingsHandler) Get(c *gin.Context) {
	settings, err := h.themeService.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"themeSettings": settings})
}

// POST /api/theme-settings
func (h *ThemeSettingsHandler) Create(c *gin.Context) {
	var req services.ThemeSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.themeService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, gin.H{"themeSettings": settings})
}

// PUT /api/theme-settings
func (h *ThemeSettingsHandler) Update(c *gin.Context) {
	var req services.ThemeSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.themeService.Update(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"themeSettings": settings})
}

// Languages lists the content languages
// GET /api/languages
func (h *ThemeSettingsHandler) Languages(c *gin.Context) {
	languages, err := h.languageService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"languages": languages})
}
